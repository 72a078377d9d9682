package book

import (
	"errors"
	"fmt"
)

var (
	ErrCacheVersionMismatch = errors.New("saved record belongs to different library version")
	ErrRestoreIncomplete    = errors.New("saved book structure is incomplete")
	ErrAlreadyOpened        = errors.New("session already opened a book")
	ErrNotOpened            = errors.New("session has no book")
	ErrNoRenderer           = errors.New("no renderer attached")
	ErrNoStorage            = errors.New("storage is not configured")
	ErrNoUnarchiver         = errors.New("packaged books are not supported")
)

// LoadError reports failure of a loading stage.
type LoadError struct {
	Stage Stage
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load book (%s stage): %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
