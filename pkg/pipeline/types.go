// Package pipeline runs one extraction-and-patch pass: read the source
// bundle, extract and merge methods, emit the generated block and patch it
// into the consumer file.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gnana997/apisync/pkg/emitter"
	"github.com/gnana997/apisync/pkg/extractor"
	"github.com/gnana997/apisync/pkg/patcher"
	"github.com/gnana997/apisync/pkg/source"
)

// ErrStrict wraps conditions that are only warnings unless Config.Strict is
// set: zero extracted methods, a missing anchor, syntax issues in the
// patched consumer file.
var ErrStrict = errors.New("strict mode")

// DefaultTarget is the consumer file used when nothing is configured.
const DefaultTarget = "src/extension.ts"

// Config configures a Pipeline.
type Config struct {
	Source source.Config

	// Target is the consumer file holding the generated block.
	Target string

	// Anchor locates the block in Target. An empty Begin follows
	// Emit.BeginMarker.
	Anchor patcher.Anchor

	Emit emitter.Options

	// Lookahead is passed to the bare scanner (see extractor.BareOptions).
	Lookahead int

	// Descriptions extends the built-in description table.
	Descriptions map[string]string

	// Strict turns the warnings listed on ErrStrict into errors. Nothing is
	// written when a strict check fails.
	Strict bool

	// DryRun computes the patch and its diff without writing.
	DryRun bool

	// VerifySyntax parses the patched consumer file with tree-sitter and
	// reports syntax errors.
	VerifySyntax bool
}

// withDefaults fills empty fields.
func (c Config) withDefaults() Config {
	if c.Target == "" {
		c.Target = DefaultTarget
	}
	if c.Emit.BeginMarker == "" {
		c.Emit.BeginMarker = emitter.DefaultBeginMarker
	}
	if c.Emit.ListName == "" {
		c.Emit.ListName = emitter.DefaultListName
	}
	if c.Anchor.Begin == "" {
		c.Anchor.Begin = c.Emit.BeginMarker
	}
	if c.Anchor.End == "" {
		c.Anchor.End = patcher.DefaultEnd
	}
	return c
}

// Validate checks that the block the emitter writes can be found again by
// the anchor on the next run. Anchor.Begin must be a prefix of the emitted
// begin marker that ends on a word boundary and contains at least one word,
// so it cannot match unrelated text earlier in the consumer file.
func (c Config) Validate() error {
	c = c.withDefaults()

	if !anchorsMarker(c.Anchor.Begin, c.Emit.BeginMarker) {
		return fmt.Errorf("anchor begin %q must be a whole-word prefix of the emitted begin marker %q", c.Anchor.Begin, c.Emit.BeginMarker)
	}
	if !strings.HasPrefix(patcher.DefaultEnd, c.Anchor.End) {
		return fmt.Errorf("anchor end %q does not match the end of the emitted block %q", c.Anchor.End, patcher.DefaultEnd)
	}
	return nil
}

func anchorsMarker(begin, marker string) bool {
	if !strings.HasPrefix(marker, begin) {
		return false
	}
	if len(begin) < len(marker) && !unicode.IsSpace(rune(marker[len(begin)])) {
		return false
	}
	return strings.IndexFunc(begin, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// Stats records counts and per-phase timings of one run.
type Stats struct {
	SourceFiles int   `json:"source_files"`
	SourceBytes int   `json:"source_bytes"`
	Documented  int   `json:"documented"`
	Bare        int   `json:"bare"`
	Methods     int   `json:"methods"`
	Issues      int   `json:"syntax_issues"`
	ReadTimeMs  int64 `json:"read_ms"`
	ExtractMs   int64 `json:"extract_ms"`
	EmitMs      int64 `json:"emit_ms"`
	PatchMs     int64 `json:"patch_ms"`
	VerifyMs    int64 `json:"verify_ms"`
	TotalTimeMs int64 `json:"total_ms"`
}

// Result describes one completed run.
type Result struct {
	RunID string `json:"run_id"`

	// Methods is the emitted list in order.
	Methods []emitter.Entry `json:"methods"`

	// Descriptors are the merged, enriched descriptors behind Methods.
	Descriptors []extractor.MethodDescriptor `json:"-"`

	// Documented and Bare are the method counts of each pass before
	// merging.
	Documented int `json:"documented"`
	Bare       int `json:"bare"`

	// Target is the consumer file path.
	Target string `json:"target"`

	AnchorFound bool `json:"anchor_found"`

	// Changed is true when the patched content differs from the file.
	Changed bool `json:"changed"`

	// Written is true when the file was rewritten.
	Written bool `json:"written"`

	// Diff is the unified diff of the patch, set in dry-run mode.
	Diff string `json:"diff,omitempty"`

	Warnings []string `json:"warnings,omitempty"`

	Stats Stats `json:"stats"`
}

// Names returns the method names in emitted order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Methods))
	for _, m := range r.Methods {
		names = append(names, m.Name)
	}
	return names
}
