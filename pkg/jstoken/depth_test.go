package jstoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_Kinds(t *testing.T) {
	toks := Tokenize(`a = 'x,y' /* c */ => == (`)

	var kinds []Kind
	for _, tok := range toks {
		if tok.Kind == KindSpace {
			continue
		}
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{KindOther, KindAssign, KindString, KindComment, KindArrow, KindCompare, KindOpen}, kinds)
}

func TestTokenize_NeverFailsOnJunk(t *testing.T) {
	toks := Tokenize("x = 'unterminated, /re(gex/ \\")
	require.NotEmpty(t, toks)

	// Offsets must cover the input without gaps.
	last := toks[len(toks)-1]
	assert.Equal(t, len("x = 'unterminated, /re(gex/ \\"), last.Offset+len(last.Text))
}

func TestBalancedParens(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		inner string
		ok    bool
	}{
		{"empty", "()", "", true},
		{"simple", "(key, value) {", "key, value", true},
		{"nested call", "(a = foo(1, 2), b) {", "a = foo(1, 2), b", true},
		{"paren in string", "(sep = ')', b) {", "sep = ')', b", true},
		{"paren in comment", "(a /* ) */, b)", "a /* ) */, b", true},
		{"multi line", "(a,\n  b = [1, (2)])\n{", "a,\n  b = [1, (2)]", true},
		{"unbalanced", "(a, b", "", false},
		{"mismatched close", "(a]", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, end, ok := BalancedParens(tt.src, 0)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.inner, inner)
				assert.Equal(t, byte(')'), tt.src[end-1])
			}
		})
	}
}

func TestBalancedParens_NotAtParen(t *testing.T) {
	_, _, ok := BalancedParens("abc", 1)
	assert.False(t, ok)
	_, _, ok = BalancedParens("abc", 10)
	assert.False(t, ok)
}

func TestSplitTopLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"a", []string{"a"}},
		{"a, b", []string{"a", "b"}},
		{"a, b = {x: 1, y: 2}, c", []string{"a", "b = {x: 1, y: 2}", "c"}},
		{"fn = (x, y) => x + y, z", []string{"fn = (x, y) => x + y", "z"}},
		{"s = ',', t", []string{"s = ','", "t"}},
		{"a, b,", []string{"a", "b", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTopLevel(tt.raw))
		})
	}
}

func TestTopLevelAssign(t *testing.T) {
	tests := []struct {
		param      string
		name       string
		hasDefault bool
	}{
		{"key", "key", false},
		{"defaultValue = null", "defaultValue", true},
		{"opts = { a: 1 }", "opts", true},
		{"{ a = 1 }", "{ a = 1 }", false},
		{"cb = (x) => x", "cb", true},
		{"...rest", "...rest", false},
		{"flag = a === b", "flag", true},
		{"  spaced\n  name  ", "spaced name", false},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			name, hasDefault := TopLevelAssign(tt.param)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.hasDefault, hasDefault)
		})
	}
}

func TestStripNested(t *testing.T) {
	assert.Equal(t, "foo() {}", StripNested("foo(a = 1) { x: y }"))
	assert.Equal(t, `const x = ""`, StripNested(`const x = 'a:b'`))
	assert.Equal(t, "getX() {", StripNested("getX() { // note: x"))
}

func TestEscapeSingleQuoted(t *testing.T) {
	assert.Equal(t, `It\'s a \\path`, EscapeSingleQuoted(`It's a \path`))
	assert.Equal(t, "one two", EscapeSingleQuoted("one\ntwo"))
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a \t b\n\nc "))
}
