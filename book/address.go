package book

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver turns user supplied book references into absolute base addresses.
type Resolver struct {
	// Origin is scheme and authority of the environment, i.e. "file://" or
	// "https://example.com".
	Origin string
	// Location is path of currently active document in the environment.
	Location string
}

// LocalResolver resolves references against current working directory.
func LocalResolver() (Resolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Resolver{}, fmt.Errorf("unable to get working directory: %w", err)
	}
	wd = filepath.ToSlash(wd)
	if !strings.HasPrefix(wd, "/") {
		wd = "/" + wd
	}
	return Resolver{Origin: "file://", Location: strings.TrimSuffix(wd, "/") + "/"}, nil
}

// Resolve returns absolute address always ending with "/". References with
// scheme are kept, references starting with "/" are taken from origin root,
// anything else is relative to folder of active location.
func (r Resolver) Resolve(raw string) string {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	switch {
	case strings.Contains(raw, "://"):
		return raw
	case strings.HasPrefix(raw, "/"):
		return r.Origin + raw
	default:
		return r.Origin + folder(r.Location) + raw
	}
}

func folder(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "/"
	}
	return p[:i+1]
}
