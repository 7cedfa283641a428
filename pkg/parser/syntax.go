package parser

import (
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// maxIssues caps how many problems CheckSyntax reports for one file.
const maxIssues = 20

// SyntaxIssue is one ERROR or MISSING node in a parse tree.
type SyntaxIssue struct {
	// Line and Column are 1-based.
	Line   int
	Column int

	// Missing is true when the parser inserted a token that is absent
	// from the source; false for unparseable text.
	Missing bool

	// Kind is the node kind (for MISSING nodes, the kind of the token that
	// was expected).
	Kind string
}

func (i SyntaxIssue) String() string {
	if i.Missing {
		return fmt.Sprintf("%d:%d: missing %s", i.Line, i.Column, i.Kind)
	}
	return fmt.Sprintf("%d:%d: syntax error", i.Line, i.Column)
}

// CheckSyntax parses source with the grammar detected from path and returns
// the syntax problems found, in source order. A nil slice means the file
// parsed cleanly.
func (pm *ParserManager) CheckSyntax(source []byte, path string) ([]SyntaxIssue, error) {
	tree, err := pm.ParseFile(source, path)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var issues []SyntaxIssue
	collectIssues(root, &issues)

	pm.logger.Debug("syntax issues found", "path", path, "count", len(issues))
	return issues, nil
}

func collectIssues(node *ts.Node, issues *[]SyntaxIssue) {
	if node == nil || len(*issues) >= maxIssues {
		return
	}

	if node.IsMissing() || node.IsError() {
		pos := node.StartPosition()
		*issues = append(*issues, SyntaxIssue{
			Line:    int(pos.Row) + 1,
			Column:  int(pos.Column) + 1,
			Missing: node.IsMissing(),
			Kind:    node.Kind(),
		})
		// Errors nested inside an ERROR node add nothing useful.
		if node.IsError() {
			return
		}
	}

	if !node.HasError() {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectIssues(node.Child(i), issues)
	}
}
