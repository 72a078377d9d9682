// Package debug produces indented text dumps of book structures.
package debug

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

const indent = "  "

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) pad(depth int) {
	tw.w.WriteString(strings.Repeat(indent, max(depth, 0)))
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Item writes list entry with marker, i.e. "- label" or "3. label".
func (tw TreeWriter) Item(depth int, marker, format string, args ...any) {
	tw.pad(depth)
	tw.w.WriteString(marker)
	tw.w.WriteByte(' ')
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Fields writes every map entry as text block, keys in natural order.
func (tw TreeWriter) Fields(depth int, m map[string]string) {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	for _, k := range keys {
		tw.TextBlock(depth, k, m[k])
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
