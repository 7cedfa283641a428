package extractor

import (
	"github.com/gnana997/apisync/pkg/jstoken"
)

// definition is one method definition matched at the start of a string.
type definition struct {
	name      string
	rawParams string
	isAsync   bool
	// end is the index just past the opening brace of the body.
	end int
}

// matchDefinition matches "optional async, identifier, parameter list,
// opening brace" anchored at the start of text.
func matchDefinition(text string) (definition, bool) {
	loc := headerPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return definition{}, false
	}

	// loc[1] is just past the '(' that closes the header pattern.
	open := loc[1] - 1
	inner, end, ok := jstoken.BalancedParens(text, open)
	if !ok {
		return definition{}, false
	}

	brace := braceAfterParams.FindStringIndex(text[end:])
	if brace == nil {
		return definition{}, false
	}

	return definition{
		name:      text[loc[4]:loc[5]],
		rawParams: inner,
		isAsync:   loc[2] >= 0,
		end:       end + brace[1],
	}, true
}
