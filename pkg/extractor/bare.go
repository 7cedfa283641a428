package extractor

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/gnana997/apisync/pkg/jstoken"
)

// DefaultLookahead is how many lines after a candidate line are joined to
// it, to catch definitions whose opening brace sits on a later line.
const DefaultLookahead = 2

// BareOptions configures ExtractBare.
type BareOptions struct {
	// Lookahead is the number of following lines tried together with each
	// line. Zero means DefaultLookahead; negative means none.
	Lookahead int
}

// denyRule skips a line when its pattern matches. Rules with onStripped
// run against the line with bracket contents, strings and comments
// removed (jstoken.StripNested), so `=` and `:` inside a parameter list or
// a one-line body do not count.
type denyRule struct {
	name       string
	pattern    *regexp2.Regexp
	onStripped bool
}

// denyRules suppress the false positives of a line-oriented scan over real
// code. They are a heuristic, not a grammar.
var denyRules = []denyRule{
	{
		name:    "control-flow",
		pattern: regexp2.MustCompile(`^(?:if|else|for|while|do|switch|case|default|try|catch|finally|return|throw|with|break|continue)\b`, regexp2.None),
	},
	{
		name:    "comment",
		pattern: regexp2.MustCompile(`^(?://|/\*|\*)`, regexp2.None),
	},
	{
		name:    "non-method-call",
		pattern: regexp2.MustCompile(`^(?:new|await|typeof|delete|void|yield|super|import|require|console|setTimeout|setInterval|Promise|module|exports)\b`, regexp2.None),
	},
	{
		// `=` that is not part of ==, ===, !=, <=, >= or =>.
		name:       "assignment",
		pattern:    regexp2.MustCompile(`(?<![=!<>])=(?![=>])`, regexp2.None),
		onStripped: true,
	},
	{
		// Object literal entries, style declarations, ternaries, labels.
		name:       "colon",
		pattern:    regexp2.MustCompile(`:`, regexp2.None),
		onStripped: true,
	},
}

// DenyReason returns the name of the deny rule that rejects line, or ""
// when the line may hold a bare method definition.
func DenyReason(line string) string {
	trimmed := strings.TrimSpace(line)
	var stripped string
	strippedDone := false

	for _, rule := range denyRules {
		subject := trimmed
		if rule.onStripped {
			if !strippedDone {
				stripped = jstoken.StripNested(trimmed)
				strippedDone = true
			}
			subject = stripped
		}
		if ok, err := rule.pattern.MatchString(subject); err == nil && ok {
			return rule.name
		}
	}
	return ""
}

// ExtractBare scans text line by line for method definitions without
// requiring a documentation block. Every line that passes the deny-list is
// tried together with the next opts.Lookahead lines. The scan is stateless
// across lines: a method found by ExtractDocumented is found here too and
// dropped later by Merge.
func ExtractBare(text string, opts BareOptions) []MethodDescriptor {
	lookahead := opts.Lookahead
	switch {
	case lookahead == 0:
		lookahead = DefaultLookahead
	case lookahead < 0:
		lookahead = 0
	}

	var out []MethodDescriptor
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" || DenyReason(line) != "" {
			continue
		}

		hi := i + 1 + lookahead
		if hi > len(lines) {
			hi = len(lines)
		}
		def, ok := matchDefinition(strings.Join(lines[i:hi], "\n"))
		if !ok {
			continue
		}

		out = append(out, MethodDescriptor{
			Name:      def.name,
			RawParams: def.rawParams,
			IsAsync:   def.isAsync,
			Origin:    OriginBare,
		})
	}

	return out
}
