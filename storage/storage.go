// Package storage keeps book resources and reader records between sessions.
//
// Store plays two roles. As blob storage it is a read-through cache in front of
// direct fetching: resources are served locally when present and fetched and
// remembered otherwise. As record storage it is a small key-value space where
// the reader persists per book settings and parsed book structure.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"epubr/config"
)

// Fetcher retrieves resources from their original location.
type Fetcher interface {
	Fetch(ctx context.Context, addr string) ([]byte, error)
}

// Blobs is a resource cache keyed by absolute address.
type Blobs interface {
	Fetch(ctx context.Context, addr string, format Format) ([]byte, error)
	Batch(ctx context.Context, addrs []string) error
}

// Records is a persistent key-value space.
type Records interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

type blob struct {
	addr   string
	mime   string
	format Format
	data   []byte
}

type backend interface {
	loadBlob(ctx context.Context, addr string) ([]byte, bool, error)
	hasBlob(ctx context.Context, addr string) (bool, error)
	saveBlob(ctx context.Context, b *blob) error
	loadRecord(ctx context.Context, key string) ([]byte, bool, error)
	saveRecord(ctx context.Context, key string, data []byte) error
	deleteRecord(ctx context.Context, key string) error
	location() string
	close() error
}

// number of parallel fetches during batch caching
const batchWorkers = 4

// Store implements both Blobs and Records on top of selected backend.
type Store struct {
	mode    config.StorageMode
	be      backend
	fetcher Fetcher
	log     *zap.Logger
}

// Open prepares store for requested mode. Persistent backends keep their data
// under dir. Mode "off" still gets persistent record space (so reading position
// survives restarts), callers are expected not to use it for blobs.
func Open(mode config.StorageMode, dir string, fetcher Fetcher, log *zap.Logger) (*Store, error) {
	var (
		be  backend
		err error
	)
	switch mode {
	case config.StorageModeRam:
		be = newRAM()
	case config.StorageModeFs:
		be, err = newFS(dir)
	case config.StorageModeOff, config.StorageModeAuto, config.StorageModeSqlite:
		be, err = newSQLite(filepath.Join(dir, "epubr.db"))
	default:
		return nil, fmt.Errorf("unsupported storage mode %s", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open %s storage: %w", mode, err)
	}
	return &Store{mode: mode, be: be, fetcher: fetcher, log: log.Named("storage")}, nil
}

// Mode returns mode store was opened with.
func (s *Store) Mode() config.StorageMode {
	return s.mode
}

// Location returns on-disk location of the store, empty for memory backend.
func (s *Store) Location() string {
	return s.be.location()
}

// Close releases backend resources.
func (s *Store) Close() error {
	return s.be.close()
}

// Fetch returns resource from local storage, fetching and storing it first if
// necessary.
func (s *Store) Fetch(ctx context.Context, addr string, format Format) ([]byte, error) {
	data, ok, err := s.be.loadBlob(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("unable to load %q from storage: %w", addr, err)
	}
	if ok {
		s.log.Debug("Served from storage", zap.String("address", addr))
		return data, nil
	}
	return s.fetchAndSave(ctx, addr, format)
}

func (s *Store) fetchAndSave(ctx context.Context, addr string, format Format) ([]byte, error) {
	data, err := s.fetcher.Fetch(ctx, addr)
	if err != nil {
		return nil, err
	}
	b := &blob{addr: addr, format: format, data: data, mime: mediaType(data, format)}
	if err := s.be.saveBlob(ctx, b); err != nil {
		return nil, fmt.Errorf("unable to store %q: %w", addr, err)
	}
	s.log.Debug("Stored", zap.String("address", addr), zap.String("type", b.mime), zap.Int("size", len(data)))
	return data, nil
}

// Batch makes sure every address is available locally. Already stored
// resources are skipped, all failures are reported together.
func (s *Store) Batch(ctx context.Context, addrs []string) error {
	var (
		mu   sync.Mutex
		errs error
		wg   sync.WaitGroup
	)

	queue := make(chan string)
	for range batchWorkers {
		wg.Go(func() {
			for addr := range queue {
				if err := s.cacheOne(ctx, addr); err != nil {
					mu.Lock()
					errs = multierr.Append(errs, err)
					mu.Unlock()
				}
			}
		})
	}

loop:
	for _, addr := range addrs {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
			break
		}
		select {
		case <-ctx.Done():
			mu.Lock()
			errs = multierr.Append(errs, ctx.Err())
			mu.Unlock()
			break loop
		case queue <- addr:
		}
	}
	close(queue)
	wg.Wait()
	return errs
}

func (s *Store) cacheOne(ctx context.Context, addr string) error {
	ok, err := s.be.hasBlob(ctx, addr)
	if err != nil {
		return fmt.Errorf("unable to check %q: %w", addr, err)
	}
	if ok {
		return nil
	}
	_, err = s.fetchAndSave(ctx, addr, formatOf(addr))
	return err
}

// Get returns record stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.be.loadRecord(ctx, key)
}

// Put stores record under key replacing previous value.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	return s.be.saveRecord(ctx, key, data)
}

// Delete removes record, absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.be.deleteRecord(ctx, key)
}

func formatOf(addr string) Format {
	if i := strings.IndexAny(addr, "?#"); i >= 0 {
		addr = addr[:i]
	}
	switch strings.ToLower(path.Ext(addr)) {
	case ".xml", ".opf", ".ncx", ".xhtml", ".html", ".htm", ".svg":
		return FormatXml
	case ".css", ".txt", ".js":
		return FormatText
	default:
		return FormatBinary
	}
}

func mediaType(data []byte, format Format) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	switch format {
	case FormatXml:
		return "application/xml"
	case FormatText:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
