package extractor

import (
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// reservedNames are the ES reserved words; none of them can name a method
// in the generated list. Contextual keywords such as get, set and of are
// valid method names and are not listed.
var reservedNames = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"implements": true, "import": true, "in": true, "instanceof": true,
	"interface": true, "let": true, "new": true, "null": true, "package": true,
	"private": true, "protected": true, "public": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true, "await": true,
}

// IsExcluded reports whether name must be dropped from the merged list.
func IsExcluded(name string) bool {
	if !identifierPattern.MatchString(name) {
		return true
	}
	if name[0] == '_' || name == "constructor" {
		return true
	}
	return reservedNames[name]
}

// Merge returns documented followed by bare, keeping only the first
// descriptor for each name and dropping excluded names. Because documented
// entries come first, a method found by both passes keeps its
// documentation-derived description.
func Merge(documented, bare []MethodDescriptor) []MethodDescriptor {
	seen := make(map[string]bool, len(documented)+len(bare))
	out := make([]MethodDescriptor, 0, len(documented)+len(bare))

	for _, list := range [][]MethodDescriptor{documented, bare} {
		for _, d := range list {
			if seen[d.Name] || IsExcluded(d.Name) {
				continue
			}
			seen[d.Name] = true
			out = append(out, d)
		}
	}

	return out
}
