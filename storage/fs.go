package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// fsBackend keeps every blob and record in its own file. File names are
// readable slugs of the original address suffixed by a hash to keep them
// unique.
type fsBackend struct {
	dir string
}

func newFS(dir string) (*fsBackend, error) {
	for _, sub := range []string{"blobs", "records"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, err
		}
	}
	return &fsBackend{dir: dir}, nil
}

func fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	base := key
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = slug.Make(path.Base(base))
	if len(base) > 64 {
		base = base[:64]
	}
	h := hex.EncodeToString(sum[:8])
	if base == "" {
		return h
	}
	return base + "-" + h
}

func (f *fsBackend) blobPath(addr string) string {
	return filepath.Join(f.dir, "blobs", fileName(addr))
}

func (f *fsBackend) recordPath(key string) string {
	return filepath.Join(f.dir, "records", fileName(key))
}

func (f *fsBackend) read(ctx context.Context, name string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// write replaces file content atomically.
func (f *fsBackend) write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(name), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("unable to replace %s: %w", name, err)
	}
	return nil
}

func (f *fsBackend) loadBlob(ctx context.Context, addr string) ([]byte, bool, error) {
	return f.read(ctx, f.blobPath(addr))
}

func (f *fsBackend) hasBlob(ctx context.Context, addr string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(f.blobPath(addr))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (f *fsBackend) saveBlob(ctx context.Context, b *blob) error {
	return f.write(ctx, f.blobPath(b.addr), b.data)
}

func (f *fsBackend) loadRecord(ctx context.Context, key string) ([]byte, bool, error) {
	return f.read(ctx, f.recordPath(key))
}

func (f *fsBackend) saveRecord(ctx context.Context, key string, data []byte) error {
	return f.write(ctx, f.recordPath(key), data)
}

func (f *fsBackend) deleteRecord(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(f.recordPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (f *fsBackend) location() string { return f.dir }

func (f *fsBackend) close() error { return nil }
