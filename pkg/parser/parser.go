package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// parserKey identifies one grammar (language + TSX variant).
type parserKey struct {
	lang  Language
	isTSX bool
}

// ParserManager owns one lazily created tree-sitter parser per grammar.
//
// Parses are serialized: apisync checks a single consumer file per run, so
// there is nothing to gain from parser pooling.
//
// Callers own returned Tree instances and must call tree.Close().
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	issues, err := manager.CheckSyntax(patched, "src/extension.ts")
type ParserManager struct {
	parsers map[parserKey]*ts.Parser
	mutex   sync.Mutex
	logger  *slog.Logger

	stats struct {
		parsersCreated int
		parsesCalled   int
	}
}

// NewParserManager creates a new ParserManager instance.
// The returned manager must be closed via Close() to free resources.
func NewParserManager(logger *slog.Logger) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		parsers: make(map[parserKey]*ts.Parser),
		logger:  logger,
	}
}

// Parse parses source with the given grammar. isTSX only matters for
// TypeScript. Partial trees with errors are returned without error.
func (pm *ParserManager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}
	if lang != LanguageTypeScript {
		isTSX = false
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.stats.parsesCalled++

	parser, err := pm.getOrCreateParserLocked(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get parser for %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	return tree, nil
}

// ParseFile parses source using the grammar detected from filePath.
// Returns a Tree that MUST be closed by the caller via tree.Close().
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	return pm.Parse(source, lang, IsTSXFile(filePath))
}

// Close releases all parsers. After Close the manager must not be used.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.logger.Debug("closing ParserManager",
		"parsers_created", pm.stats.parsersCreated,
		"parses_called", pm.stats.parsesCalled)

	for _, parser := range pm.parsers {
		parser.Close()
	}
	pm.parsers = make(map[parserKey]*ts.Parser)

	return nil
}

// getOrCreateParserLocked must be called with mutex held.
func (pm *ParserManager) getOrCreateParserLocked(lang Language, isTSX bool) (*ts.Parser, error) {
	key := parserKey{lang: lang, isTSX: isTSX}
	if parser, ok := pm.parsers[key]; ok {
		return parser, nil
	}

	langPtr, err := languagePointer(lang, isTSX)
	if err != nil {
		return nil, err
	}

	parser := ts.NewParser()
	if err := parser.SetLanguage(ts.NewLanguage(langPtr)); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set language %s: %w", lang, err)
	}

	pm.parsers[key] = parser
	pm.stats.parsersCreated++

	pm.logger.Debug("created parser",
		"language", lang.String(),
		"isTSX", isTSX)

	return parser, nil
}

// languagePointer returns the tree-sitter grammar for lang.
func languagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil

	case LanguageJavaScript:
		return ts_javascript.Language(), nil

	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	return ParserStats{
		ParsersCreated: pm.stats.parsersCreated,
		ParsesCalled:   pm.stats.parsesCalled,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the total number of parser instances created
	ParsersCreated int

	// ParsesCalled is the total number of Parse() calls
	ParsesCalled int
}
