// Package extractor finds exported API methods in a hand-written JavaScript
// source bundle.
//
// Two independent passes run over the same text:
//   - ExtractDocumented pairs each /** ... */ block with the method defined
//     right after it (highest confidence, carries a description).
//   - ExtractBare scans line by line for method-like definitions that have
//     no documentation comment, behind a deny-list of common false positives.
//
// Merge combines both passes into one ordered list with unique names.
//
// This is a best-effort textual extractor tuned to one source dialect. It
// does not build a syntax tree and does not validate the JavaScript.
package extractor

import (
	"regexp"
)

// Origin records which pass produced a descriptor.
type Origin string

const (
	OriginDocumented Origin = "documented"
	OriginBare       Origin = "bare"
)

// MethodDescriptor is the extracted metadata of one exported method.
type MethodDescriptor struct {
	// Name is the method identifier; unique within a merged list.
	Name string `json:"name"`

	// RawParams is the parameter list exactly as written in source,
	// without the enclosing parens.
	RawParams string `json:"raw_params"`

	// IsAsync is true when the definition was preceded by `async`.
	IsAsync bool `json:"is_async"`

	// Description is the doc-derived summary straight out of a matcher
	// (may be empty) or, after describe.Resolver.Enrich, the resolved
	// never-empty description. Always safe inside a single-quoted literal.
	Description string `json:"description"`

	// JSDoc is the raw text of the preceding documentation block.
	// Empty for descriptors found by the bare scanner.
	JSDoc string `json:"jsdoc,omitempty"`

	Origin Origin `json:"origin"`
}

// HasJSDoc reports whether the descriptor came with a documentation block.
func (d MethodDescriptor) HasJSDoc() bool {
	return d.JSDoc != ""
}

// headerPattern matches the start of a method definition up to and
// including the opening paren of its parameter list:
//
//	async function getSetting(
//	static async load(
//	disconnectSocket(
//
// The parameter list itself is read with jstoken.BalancedParens so nested
// parens and strings in default values do not end it early.
var headerPattern = regexp.MustCompile(
	`^[ \t]*(?:export[ \t]+)?(?:static[ \t]+)?(async[ \t]+)?(?:function\b[ \t]*\*?[ \t]*)?([A-Za-z_$][\w$]*)[ \t]*\(`,
)

// braceAfterParams matches optional whitespace (line breaks included)
// followed by the opening brace of the method body.
var braceAfterParams = regexp.MustCompile(`^\s*\{`)
