package state

import (
	"fmt"
	"os"
	"path/filepath"

	"epubr/misc"
)

// PrepareStorageDir decides where persistent data lives and makes sure
// directory exists. Configured path wins, otherwise per user cache directory is
// used.
func (e *LocalEnv) PrepareStorageDir() (string, error) {
	dir := ""
	if e.Cfg != nil {
		dir = e.Cfg.Reader.StoragePath
	}
	if len(dir) == 0 {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("unable to locate user cache directory: %w", err)
		}
		dir = filepath.Join(base, misc.GetAppName())
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create storage directory: %w", err)
	}
	e.StorageDir = dir
	return dir, nil
}

// BooksDir is where packaged books are extracted.
func (e *LocalEnv) BooksDir() string {
	return filepath.Join(e.StorageDir, "books")
}

// ReportStorage puts persistent reader state into debug report: storage
// database when there is one and listing of extracted books.
func (e *LocalEnv) ReportStorage(location string) {
	if e.Rpt == nil {
		return
	}
	if len(location) > 0 {
		e.Rpt.Store("storage/"+filepath.Base(location), location)
	}
	e.Rpt.StoreListing("storage/books.lst", e.BooksDir())
}
