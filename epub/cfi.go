package epub

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadLocation is returned for strings which are not valid fragment
// identifiers.
var ErrBadLocation = errors.New("malformed location")

const (
	cfiPrefix = "epubcfi("
	// package document child step pointing to spine element
	cfiSpineStep = "/6/"
)

// CFI is simplified canonical fragment identifier: spine step plus opaque
// path inside the content document.
type CFI struct {
	Spine int
	IDRef string
	// Path is everything after the indirection step, it is interpreted by the
	// renderer.
	Path string
}

// ParseCFI parses "epubcfi(/6/N[idref]!path)" strings.
func ParseCFI(s string) (CFI, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, cfiPrefix) || !strings.HasSuffix(s, ")") {
		return CFI{}, fmt.Errorf("%w: %q", ErrBadLocation, s)
	}
	body := s[len(cfiPrefix) : len(s)-1]

	spinePart, path, _ := strings.Cut(body, "!")
	if !strings.HasPrefix(spinePart, cfiSpineStep) {
		return CFI{}, fmt.Errorf("%w: no spine step in %q", ErrBadLocation, s)
	}
	step := spinePart[len(cfiSpineStep):]

	var idref string
	if i := strings.IndexByte(step, '['); i >= 0 {
		if !strings.HasSuffix(step, "]") {
			return CFI{}, fmt.Errorf("%w: unterminated assertion in %q", ErrBadLocation, s)
		}
		idref = step[i+1 : len(step)-1]
		step = step[:i]
	}

	n, err := strconv.Atoi(step)
	if err != nil || n < 2 || n%2 != 0 {
		return CFI{}, fmt.Errorf("%w: bad spine step in %q", ErrBadLocation, s)
	}
	return CFI{Spine: n/2 - 1, IDRef: idref, Path: path}, nil
}

func (c CFI) String() string {
	var sb strings.Builder
	sb.WriteString(cfiPrefix)
	sb.WriteString(cfiSpineStep)
	sb.WriteString(strconv.Itoa((c.Spine + 1) * 2))
	if c.IDRef != "" {
		sb.WriteString("[" + c.IDRef + "]")
	}
	sb.WriteString("!")
	sb.WriteString(c.Path)
	sb.WriteString(")")
	return sb.String()
}

// Anchor returns the last element id asserted in path, if any.
func Anchor(path string) string {
	end := strings.LastIndexByte(path, ']')
	if end < 0 {
		return ""
	}
	start := strings.LastIndexByte(path[:end], '[')
	if start < 0 {
		return ""
	}
	return path[start+1 : end]
}

// IsCFI reports whether s looks like fragment identifier rather than plain
// link.
func IsCFI(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), cfiPrefix)
}
