// Package parser parses consumer files with tree-sitter to check that a
// patch left them syntactically valid.
package parser

import (
	"path/filepath"
	"strings"
)

// Language is a grammar family the syntax check supports.
type Language int

const (
	// LanguageTypeScript covers .ts and .tsx files.
	LanguageTypeScript Language = iota
	// LanguageJavaScript covers .js and .jsx files.
	LanguageJavaScript
	// LanguageUnknown is any other extension.
	LanguageUnknown
)

func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the language from a file extension.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile reports whether filePath needs the TSX grammar.
func IsTSXFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".tsx"
}

// Supported reports whether CheckSyntax can handle filePath.
func Supported(filePath string) bool {
	return DetectLanguage(filePath) != LanguageUnknown
}
