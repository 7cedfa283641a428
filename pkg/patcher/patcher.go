// Package patcher replaces the generated block inside the consumer file.
package patcher

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/gnana997/apisync/pkg/emitter"
)

// DefaultEnd closes the generated list literal.
const DefaultEnd = "];"

// Anchor delimits the generated block in the consumer file.
type Anchor struct {
	// Begin is the marker that starts the block.
	Begin string `yaml:"begin"`

	// End closes the block. Only an End that starts a line (after
	// indentation) counts, so a "];" inside a description string on an
	// entry line never ends the block early.
	End string `yaml:"end"`
}

// DefaultAnchor matches blocks produced by emitter.Emit with default options.
func DefaultAnchor() Anchor {
	return Anchor{Begin: emitter.DefaultBeginMarker, End: DefaultEnd}
}

func (a Anchor) withDefaults() Anchor {
	if a.Begin == "" {
		a.Begin = emitter.DefaultBeginMarker
	}
	if a.End == "" {
		a.End = DefaultEnd
	}
	return a
}

// Locate returns the byte span [start, end) of the generated block in text:
// from the first Begin through the first End after it, inclusive.
func Locate(text string, a Anchor) (start, end int, ok bool) {
	a = a.withDefaults()

	start = strings.Index(text, a.Begin)
	if start < 0 {
		return 0, 0, false
	}

	pos := start + len(a.Begin)
	for pos < len(text) {
		nl := strings.IndexByte(text[pos:], '\n')
		if nl < 0 {
			break
		}
		lineStart := pos + nl + 1
		line := text[lineStart:]
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, a.End) {
			end = lineStart + (len(line) - len(trimmed)) + len(a.End)
			return start, end, true
		}
		pos = lineStart
	}

	return 0, 0, false
}

// Patch replaces the generated block in text with block. When either marker
// is missing text is returned unchanged and found is false.
func Patch(text, block string, a Anchor) (patched string, found bool) {
	start, end, ok := Locate(text, a)
	if !ok {
		return text, false
	}
	return text[:start] + block + text[end:], true
}

// Diff returns a unified diff between old and new content of path, or ""
// when they are equal.
func Diff(path, oldText, newText string) (string, error) {
	if oldText == newText {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
}
