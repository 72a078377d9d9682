// Package archive opens packaged (zipped) books so the rest of the reader can
// treat them as a folder of resources.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	mimetypeName    = "mimetype"
	mimetypeContent = "application/epub+zip"
)

// WalkFunc is called for each file in archive visited by Walk. If an error is
// returned, processing stops.
type WalkFunc func(file *zip.File) error

// Walk calls walkFn for every regular file in the archive with name starting
// with prefix. Archive entries with absolute paths or ".." components make
// the whole archive unacceptable.
func Walk(r *zip.Reader, prefix string, walkFn WalkFunc) error {
	for _, f := range r.File {
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, prefix) {
			if err := walkFn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkMimetype rejects archives declaring media type other than EPUB. Plain
// zip files without mimetype entry are accepted.
func checkMimetype(r *zip.Reader) error {
	for _, f := range r.File {
		if f.Name != mimetypeName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		data, err := io.ReadAll(io.LimitReader(rc, 256))
		if err != nil {
			return err
		}
		if mt := strings.TrimSpace(string(data)); mt != mimetypeContent {
			return fmt.Errorf("%w: unexpected media type %q", ErrNotBook, mt)
		}
		return nil
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
