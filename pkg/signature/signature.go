// Package signature turns an untyped JavaScript parameter list into a
// TypeScript-looking declaration string for editor completions.
package signature

import (
	"strings"

	"github.com/gnana997/apisync/pkg/jstoken"
)

const (
	anyType     = "any"
	promiseType = "Promise<any>"
)

// Param is one parameter of a synthesized signature.
type Param struct {
	Name     string
	Optional bool
}

// Params splits rawParams on top-level commas and classifies each token.
// A token is optional when it holds a top-level `=` (a default value).
// Empty tokens, e.g. from a trailing comma, are skipped.
func Params(rawParams string) []Param {
	var params []Param
	for _, tok := range jstoken.SplitTopLevel(rawParams) {
		if tok == "" {
			continue
		}
		name, hasDefault := jstoken.TopLevelAssign(tok)
		if name == "" {
			continue
		}
		params = append(params, Param{Name: name, Optional: hasDefault})
	}
	return params
}

// Synthesize renders `name(p: any, q?: any): any`, with a Promise<any>
// return type for async methods.
func Synthesize(name, rawParams string, isAsync bool) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, p := range Params(rawParams) {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Optional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		b.WriteString(anyType)
	}
	b.WriteString("): ")
	if isAsync {
		b.WriteString(promiseType)
	} else {
		b.WriteString(anyType)
	}
	return b.String()
}
