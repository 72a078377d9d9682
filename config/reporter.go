package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"

	"epubr/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{file: f, entries: make(map[string]reportEntry)}, nil
}

type entryKind int

const (
	// file or whole directory copied into report
	entryCopy entryKind = iota
	// in-memory data
	entryData
	// directory listing only, books extracted by reader could be large
	entryListing
)

func (k entryKind) String() string {
	switch k {
	case entryData:
		return "data"
	case entryListing:
		return "listing"
	}
	return "copy"
}

type reportEntry struct {
	kind   entryKind
	source string
	stamp  time.Time
	data   []byte
}

// Report collects program artifacts (logs, configuration, storage database,
// extracted books) and packs them into single archive on Close. Nil report
// accepts everything and does nothing.
type Report struct {
	mu      sync.Mutex
	file    *os.File
	entries map[string]reportEntry
}

// Name returns absolute name of report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store schedules file or directory at path to be copied into report under
// name. First registration of a name wins.
func (r *Report) Store(name, path string) {
	r.add(name, reportEntry{kind: entryCopy, source: absPath(path)})
}

// StoreData puts data into report as file with requested name.
func (r *Report) StoreData(name string, data []byte) {
	r.add(name, reportEntry{kind: entryData, data: data, stamp: time.Now()})
}

// StoreListing puts listing of files under dir into report. Content of the
// files is not archived.
func (r *Report) StoreListing(name, dir string) {
	r.add(name, reportEntry{kind: entryListing, source: absPath(dir)})
}

func (r *Report) add(name string, e reportEntry) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		r.entries[name] = e
	}
}

// Close writes report archive. Missing sources are skipped, unreadable ones
// are reported but do not stop the rest of the report.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	arc := zip.NewWriter(r.file)
	err := r.write(arc)
	err = multierr.Append(err, arc.Close())
	err = multierr.Append(err, r.file.Close())
	r.file = nil
	return err
}

func (r *Report) write(arc *zip.Writer) (err error) {
	now := time.Now()
	names := slices.Sorted(maps.Keys(r.entries))

	var manifest bytes.Buffer
	for _, name := range names {
		e := r.entries[name]
		fmt.Fprintf(&manifest, "%s\t%s\t%s\t%s\n", now.UTC().Format(time.RFC3339), e.kind, name, e.source)
	}
	if err := addFile(arc, "MANIFEST", now, &manifest); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		switch e.kind {
		case entryData:
			err = multierr.Append(err, addFile(arc, name, e.stamp, bytes.NewReader(e.data)))
		case entryListing:
			err = multierr.Append(err, addListing(arc, name, e.source, now))
		default:
			err = multierr.Append(err, addPath(arc, name, e.source))
		}
	}
	return err
}

func absPath(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}
	return path
}

func addFile(arc *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func copyFile(arc *zip.Writer, name, path string, t time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return addFile(arc, name, t, f)
}

// addPath copies regular file or every regular file of directory tree.
func addPath(arc *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode().IsRegular() {
		return copyFile(arc, name, path, info.ModTime())
	}
	if !info.IsDir() {
		return nil
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		return copyFile(arc, filepath.ToSlash(filepath.Join(name, rel)), p, fi.ModTime())
	})
}

// addListing writes one line per regular file: size, modification time and
// path relative to dir.
func addListing(arc *zip.Writer, name, dir string, t time.Time) error {
	var buf bytes.Buffer
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return fs.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "%10d\t%s\t%s\n", fi.Size(), fi.ModTime().UTC().Format(time.RFC3339), filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return err
	}
	return addFile(arc, name, t, &buf)
}
