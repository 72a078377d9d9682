package book

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"epubr/storage"
)

// cacheManager keeps session settings and book structure in record storage.
// Records are keyed by book address and configured version and carry
// library version, record written by another library version is never used.
type cacheManager struct {
	records storage.Records
	version string
	log     *zap.Logger
}

type contentsRecord struct {
	LibraryVersion string    `yaml:"library_version"`
	Contents       *Contents `yaml:"contents"`
}

func settingsKey(base string, version int) string {
	return fmt.Sprintf("settings:%s:%d", base, version)
}

func contentsKey(base string, version int) string {
	return fmt.Sprintf("contents:%s:%d", base, version)
}

// loadSettings returns nil when there is nothing usable saved.
func (c *cacheManager) loadSettings(ctx context.Context, base string, version int) *savedSettings {
	if c.records == nil {
		return nil
	}
	key := settingsKey(base, version)
	var saved savedSettings
	if err := c.load(ctx, key, &saved); err != nil {
		c.log.Debug("Saved settings ignored", zap.String("key", key), zap.Error(err))
		return nil
	}
	if saved.LibraryVersion != c.version {
		c.log.Debug("Saved settings ignored", zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %s", ErrCacheVersionMismatch, saved.LibraryVersion)))
		c.remove(ctx, key)
		return nil
	}
	return &saved
}

func (c *cacheManager) saveSettings(ctx context.Context, base string, version int, s Settings) error {
	return c.save(ctx, settingsKey(base, version), snapshot(s, c.version))
}

func (c *cacheManager) removeSettings(ctx context.Context, base string, version int) {
	c.remove(ctx, settingsKey(base, version))
}

// loadContents returns saved structure only when it is complete and was
// written by running library version.
func (c *cacheManager) loadContents(ctx context.Context, base string, version int) (*Contents, error) {
	if c.records == nil {
		return nil, ErrRestoreIncomplete
	}
	var rec contentsRecord
	if err := c.load(ctx, contentsKey(base, version), &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRestoreIncomplete, err)
	}
	if rec.LibraryVersion != c.version {
		return nil, fmt.Errorf("%w: %s", ErrCacheVersionMismatch, rec.LibraryVersion)
	}
	if !rec.Contents.complete() {
		return nil, ErrRestoreIncomplete
	}
	return rec.Contents, nil
}

func (c *cacheManager) saveContents(ctx context.Context, base string, version int, contents *Contents) error {
	return c.save(ctx, contentsKey(base, version), contentsRecord{LibraryVersion: c.version, Contents: contents})
}

func (c *cacheManager) removeContents(ctx context.Context, base string, version int) {
	c.remove(ctx, contentsKey(base, version))
}

var errNoRecord = errors.New("no record")

func (c *cacheManager) load(ctx context.Context, key string, out any) error {
	data, ok, err := c.records.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("unable to read record: %w", err)
	}
	if !ok {
		return errNoRecord
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unable to decode record: %w", err)
	}
	return nil
}

func (c *cacheManager) save(ctx context.Context, key string, in any) error {
	if c.records == nil {
		return nil
	}
	data, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("unable to encode record %s: %w", key, err)
	}
	if err := c.records.Put(ctx, key, data); err != nil {
		return fmt.Errorf("unable to save record %s: %w", key, err)
	}
	return nil
}

func (c *cacheManager) remove(ctx context.Context, key string) {
	if c.records == nil {
		return
	}
	if err := c.records.Delete(ctx, key); err != nil {
		c.log.Warn("Unable to remove saved record", zap.String("key", key), zap.Error(err))
	}
}

// isContained reports whether address points to packaged book.
func isContained(addr string) bool {
	addr = strings.TrimSuffix(addr, "/")
	if i := strings.IndexAny(addr, "?#"); i >= 0 {
		addr = addr[:i]
	}
	switch strings.ToLower(path.Ext(addr)) {
	case ".epub", ".zip":
		return true
	}
	return false
}
