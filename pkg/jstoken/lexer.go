// Package jstoken provides a small JavaScript tokenizer that is aware of
// string literals, comments and bracket nesting.
//
// It is not a parser: it only knows enough about JavaScript to find the
// matching close of a parameter list and to split a parameter list on
// top-level commas without being fooled by commas, parens or `=` inside
// nested calls, object/array literals, strings or comments.
package jstoken

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a token.
type Kind int

const (
	KindOther Kind = iota
	KindComment
	KindString
	KindArrow
	KindCompare
	KindAssign
	KindOpen
	KindClose
	KindComma
	KindSpace
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindString:
		return "string"
	case KindArrow:
		return "arrow"
	case KindCompare:
		return "compare"
	case KindAssign:
		return "assign"
	case KindOpen:
		return "open"
	case KindClose:
		return "close"
	case KindComma:
		return "comma"
	case KindSpace:
		return "space"
	default:
		return "other"
	}
}

// Token is a lexed fragment of JavaScript source.
type Token struct {
	Kind Kind
	Text string
	// Offset is the 0-based byte offset of the token in the lexed string.
	Offset int
}

// jsLexer is ordered: at any position the first matching rule wins.
// Char is a catch-all so lexing never fails on unexpected input
// (unterminated strings, regex literals, stray backslashes).
var jsLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "LineComment", Pattern: `//[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*+[^*/])*\*+/`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'|` + "`(?:\\\\.|[^`\\\\])*`"},
	{Name: "Arrow", Pattern: `=>`},
	{Name: "Compare", Pattern: `[=!]==?|[<>]=`},
	{Name: "Assign", Pattern: `=`},
	{Name: "Open", Pattern: `[(\[{]`},
	{Name: "Close", Pattern: `[)\]}]`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Word", Pattern: "[^\\s,()\\[\\]{}=!<>\"'`/]+"},
	{Name: "Char", Pattern: `[\s\S]`},
})

// kindByType maps participle token types to Kind.
var kindByType = func() map[lexer.TokenType]Kind {
	symbols := jsLexer.Symbols()
	return map[lexer.TokenType]Kind{
		symbols["LineComment"]:  KindComment,
		symbols["BlockComment"]: KindComment,
		symbols["String"]:       KindString,
		symbols["Arrow"]:        KindArrow,
		symbols["Compare"]:      KindCompare,
		symbols["Assign"]:       KindAssign,
		symbols["Open"]:         KindOpen,
		symbols["Close"]:        KindClose,
		symbols["Comma"]:        KindComma,
		symbols["Whitespace"]:   KindSpace,
	}
}()

// Scan lexes src and calls fn for every token in order. Scanning stops
// early when fn returns false. Tokens are produced lazily, so stopping
// early does not pay for lexing the rest of src.
func Scan(src string, fn func(Token) bool) {
	lex, err := jsLexer.LexString("", src)
	if err != nil {
		return
	}
	for {
		tok, err := lex.Next()
		if err != nil || tok.EOF() {
			return
		}
		kind, ok := kindByType[tok.Type]
		if !ok {
			kind = KindOther
		}
		if !fn(Token{Kind: kind, Text: tok.Value, Offset: tok.Pos.Offset}) {
			return
		}
	}
}

// Tokenize returns all tokens of src.
func Tokenize(src string) []Token {
	var toks []Token
	Scan(src, func(t Token) bool {
		toks = append(toks, t)
		return true
	})
	return toks
}
