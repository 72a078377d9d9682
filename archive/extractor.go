package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// ErrNotBook is returned for archives which are not packaged books.
var ErrNotBook = errors.New("not a packaged book")

// Fetcher retrieves remote archives.
type Fetcher interface {
	Fetch(ctx context.Context, addr string) ([]byte, error)
}

// Extractor unpacks packaged books into local folders under its directory.
// Every archive address always maps to the same folder so structure restored
// from records keeps pointing to valid resources between runs.
type Extractor struct {
	dir     string
	fetcher Fetcher
	log     *zap.Logger
}

// NewExtractor returns extractor working under dir.
func NewExtractor(dir string, fetcher Fetcher, log *zap.Logger) *Extractor {
	return &Extractor{dir: dir, fetcher: fetcher, log: log.Named("archive")}
}

// Folder returns local folder used for archive at addr.
func (e *Extractor) Folder(addr string) string {
	addr = strings.TrimSuffix(addr, "/")
	sum := sha256.Sum256([]byte(addr))
	name := slug.Make(strings.TrimSuffix(path.Base(addr), path.Ext(addr)))
	if len(name) > 48 {
		name = name[:48]
	}
	return filepath.Join(e.dir, name+"-"+hex.EncodeToString(sum[:6]))
}

// Unarchive unpacks book found at addr and returns "file://" address of the
// folder holding its content, with trailing separator.
func (e *Extractor) Unarchive(ctx context.Context, addr string) (string, error) {
	addr = strings.TrimSuffix(addr, "/")

	data, err := e.load(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("unable to read archive %s: %w", addr, err)
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotBook, err)
	}
	if err := checkMimetype(r); err != nil {
		return "", err
	}

	dst := e.Folder(addr)
	if err := e.Remove(addr); err != nil {
		return "", fmt.Errorf("unable to clean extraction directory: %w", err)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return "", fmt.Errorf("unable to create extraction directory: %w", err)
	}

	var count int
	err = Walk(r, "", func(f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++
		return extractFile(f, filepath.Join(dst, filepath.FromSlash(f.Name)))
	})
	if err != nil {
		return "", fmt.Errorf("unable to extract %s: %w", addr, err)
	}

	e.log.Debug("Archive extracted", zap.String("archive", addr), zap.String("to", dst), zap.Int("files", count))
	return fileURL(dst), nil
}

func (e *Extractor) load(ctx context.Context, addr string) ([]byte, error) {
	u, err := url.Parse(addr)
	if err == nil && u.Scheme == "file" {
		return os.ReadFile(filepath.FromSlash(u.Path))
	}
	if e.fetcher == nil {
		return nil, fmt.Errorf("no way to fetch %s", addr)
	}
	return e.fetcher.Fetch(ctx, addr)
}

// Remove deletes extracted content of archive at addr.
func (e *Extractor) Remove(addr string) error {
	return os.RemoveAll(e.Folder(addr))
}

func extractFile(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func fileURL(dir string) string {
	p := filepath.ToSlash(dir)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p + "/"}).String()
}
