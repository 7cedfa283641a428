package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gnana997/apisync/pkg/jstoken"
)

// docBlockPattern matches a /** ... */ block. The body may not contain
// "*/", so the nearest close always ends the block even when the pattern
// is retried further on in the text.
var docBlockPattern = regexp.MustCompile(`/\*\*((?:[^*]|\*+[^*/])*)\*+/`)

// ExtractDocumented returns every method definition that immediately
// follows a documentation block, in source order. Matches never overlap:
// scanning resumes after the opening brace of each matched method.
//
// Description holds the first non-tag line of the block (whitespace
// collapsed, escaped for a single-quoted literal) or "" if the block has
// none. Name filtering is left to Merge.
func ExtractDocumented(text string) []MethodDescriptor {
	var out []MethodDescriptor

	pos := 0
	for pos < len(text) {
		loc := docBlockPattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		blockEnd := pos + loc[1]
		body := text[pos+loc[2] : pos+loc[3]]
		block := text[pos+loc[0] : blockEnd]

		after := strings.TrimLeftFunc(text[blockEnd:], unicode.IsSpace)
		skipped := len(text[blockEnd:]) - len(after)

		def, ok := matchDefinition(after)
		if !ok {
			pos = blockEnd
			continue
		}

		out = append(out, MethodDescriptor{
			Name:        def.name,
			RawParams:   def.rawParams,
			IsAsync:     def.isAsync,
			Description: docSummary(body),
			JSDoc:       block,
			Origin:      OriginDocumented,
		})
		pos = blockEnd + skipped + def.end
	}

	return out
}

// docSummary returns the first line of a doc block body that is not empty
// and does not start with an @tag.
func docSummary(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "*")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		return jstoken.EscapeSingleQuoted(jstoken.CollapseSpace(line))
	}
	return ""
}
