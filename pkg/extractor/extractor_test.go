package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadBundle(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "bundle.js"))
	require.NoError(t, err)
	return string(data)
}

func names(descs []MethodDescriptor) []string {
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Name)
	}
	return out
}

func TestExtractDocumented_GetSetting(t *testing.T) {
	src := `/**
 * Get an application setting.
 * @param {string} key
 */
async function getSetting(key, defaultValue = null) {}`

	got := ExtractDocumented(src)
	require.Len(t, got, 1)

	d := got[0]
	assert.Equal(t, "getSetting", d.Name)
	assert.True(t, d.IsAsync)
	assert.Equal(t, "key, defaultValue = null", d.RawParams)
	assert.Equal(t, "Get an application setting.", d.Description)
	assert.Equal(t, OriginDocumented, d.Origin)
	assert.True(t, d.HasJSDoc())
	assert.Contains(t, d.JSDoc, "@param {string} key")
}

func TestExtractDocumented_Bundle(t *testing.T) {
	got := ExtractDocumented(loadBundle(t))

	assert.Equal(t, []string{"getSetting", "showMessage", "formatBytes"}, names(got))

	assert.Equal(t, `Show a message to the user. Accepts \'info\', \'warn\' or \'error\'.`, got[1].Description)
	assert.Equal(t, "text, level = 'info', opts = { modal: false, items: [] }", got[1].RawParams)
	assert.False(t, got[1].IsAsync)

	assert.Equal(t, "Extra helpers bundled from helpers.js.", got[2].Description)
	assert.Equal(t, "n, unit = pick(n, (x) => x > 1024)", got[2].RawParams)
}

func TestExtractDocumented_BlockMustDirectlyPrecede(t *testing.T) {
	src := `/** Orphaned. */
const x = 1;
foo() {}

/** Attached. */

bar() {}`

	got := ExtractDocumented(src)
	require.Len(t, got, 1)
	assert.Equal(t, "bar", got[0].Name)
	assert.Equal(t, "Attached.", got[0].Description)
}

func TestExtractDocumented_NearestCloseEndsBlock(t *testing.T) {
	src := `/** First. */ /** Second. */ second() {}`

	got := ExtractDocumented(src)
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Name)
	assert.Equal(t, "Second.", got[0].Description)
	assert.Equal(t, "/** Second. */", got[0].JSDoc)
}

func TestExtractDocumented_TagOnlyBlock(t *testing.T) {
	got := ExtractDocumented("/**\n * @deprecated\n */\nold() {}")
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Description)
}

func TestExtractDocumented_StaticAndExport(t *testing.T) {
	src := `/** Load. */
static async load(opts) {
}
/** Make. */
export function* make() {
}`

	got := ExtractDocumented(src)
	require.Len(t, got, 2)
	assert.Equal(t, "load", got[0].Name)
	assert.True(t, got[0].IsAsync)
	assert.Equal(t, "make", got[1].Name)
	assert.False(t, got[1].IsAsync)
}

func TestDenyReason(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"if (ready) {", "control-flow"},
		{"} else {", ""},
		{"while (next()) {", "control-flow"},
		{"return compute(a, b) {", "control-flow"},
		{"// legacy() {", "comment"},
		{"/* old() { */", "comment"},
		{"* @example run() {", "comment"},
		{"new Widget(opts) {", "non-method-call"},
		{"console.log(x)", "non-method-call"},
		{"setTimeout(() => {", "non-method-call"},
		{"const handler = () => {", "assignment"},
		{"this.state = load() {", "assignment"},
		{"handler: function () {", "colon"},
		{"key: value(a) {", "colon"},
		{"async load(opts = {}) {", ""},
		{"run(a = b ? c : d) {", ""},
		{"check(a) { return a === b }", ""},
		{"pick(x) { return x >= 1 }", ""},
		{"iffy() {", ""},
		{"defaultValue() {", ""},
		{"format(s = 'a:b=c') {", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, DenyReason(tt.line))
		})
	}
}

func TestExtractBare_DisconnectSocket(t *testing.T) {
	got := ExtractBare("disconnectSocket() {}", BareOptions{})
	require.Len(t, got, 1)

	d := got[0]
	assert.Equal(t, "disconnectSocket", d.Name)
	assert.False(t, d.IsAsync)
	assert.Equal(t, "", d.RawParams)
	assert.Equal(t, "", d.Description)
	assert.False(t, d.HasJSDoc())
	assert.Equal(t, OriginBare, d.Origin)
}

func TestExtractBare_Bundle(t *testing.T) {
	got := ExtractBare(loadBundle(t), BareOptions{})

	assert.Equal(t, []string{
		"constructor",
		"getSetting",
		"showMessage",
		"disconnectSocket",
		"_call",
		"formatBytes",
		"getSetting",
	}, names(got))

	for _, d := range got {
		assert.Empty(t, d.JSDoc, d.Name)
	}
}

func TestExtractBare_Lookahead(t *testing.T) {
	src := loadBundle(t)

	assert.NotContains(t, names(ExtractBare(src, BareOptions{})), "readFile")
	assert.Contains(t, names(ExtractBare(src, BareOptions{Lookahead: 3})), "readFile")

	braceBelow := "connect(host)\n{\n}"
	assert.Equal(t, []string{"connect"}, names(ExtractBare(braceBelow, BareOptions{})))
	assert.Empty(t, ExtractBare(braceBelow, BareOptions{Lookahead: -1}))
}

func TestExtractBare_IgnoresCallStatements(t *testing.T) {
	src := `
    refresh();
    this.emit('change', value);
    await flush(queue);
    compute(a, b) + 1;
`
	assert.Empty(t, ExtractBare(src, BareOptions{}))
}

func TestMerge_Bundle(t *testing.T) {
	src := loadBundle(t)
	merged := Merge(ExtractDocumented(src), ExtractBare(src, BareOptions{}))

	assert.Equal(t, []string{"getSetting", "showMessage", "formatBytes", "disconnectSocket"}, names(merged))

	// The documented getSetting wins over both bare hits.
	assert.Equal(t, "Get an application setting.", merged[0].Description)
	assert.Equal(t, OriginDocumented, merged[0].Origin)
	assert.Equal(t, "key, defaultValue = null", merged[0].RawParams)
	assert.Equal(t, OriginBare, merged[3].Origin)
}

func TestMerge_DuplicateAcrossBundle(t *testing.T) {
	documented := []MethodDescriptor{
		{Name: "openPanel", Description: "Open the panel.", JSDoc: "/** Open the panel. */", Origin: OriginDocumented},
	}
	bare := []MethodDescriptor{
		{Name: "openPanel", RawParams: "id", Origin: OriginBare},
	}

	merged := Merge(documented, bare)
	require.Len(t, merged, 1)
	assert.Equal(t, "Open the panel.", merged[0].Description)
	assert.True(t, merged[0].HasJSDoc())
}

func TestMerge_Uniqueness(t *testing.T) {
	documented := []MethodDescriptor{{Name: "a"}, {Name: "b"}, {Name: "a"}}
	bare := []MethodDescriptor{{Name: "b"}, {Name: "c"}, {Name: "c"}, {Name: "a"}}

	merged := Merge(documented, bare)
	assert.Equal(t, []string{"a", "b", "c"}, names(merged))

	seen := map[string]bool{}
	for _, d := range merged {
		assert.False(t, seen[d.Name], "duplicate %s", d.Name)
		seen[d.Name] = true
	}
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
}

func TestIsExcluded(t *testing.T) {
	excluded := []string{"", "_private", "__proto", "constructor", "if", "return", "await", "class", "1abc", "a-b"}
	for _, name := range excluded {
		assert.True(t, IsExcluded(name), name)
	}

	kept := []string{"getSetting", "$emit", "of", "get", "set", "static", "getter", "a_b", "Constructor"}
	for _, name := range kept {
		assert.False(t, IsExcluded(name), name)
	}
}

func TestExtractBare_KeywordPrefixedNames(t *testing.T) {
	src := "functionKeys() {\n}\nasyncQueue(job) {\n}\nexportData(fmt) {\n}"
	assert.Equal(t, []string{"functionKeys", "asyncQueue", "exportData"}, names(ExtractBare(src, BareOptions{})))
}

func TestMerge_KeepsContextualKeywordNames(t *testing.T) {
	src := `/** Fetch a resource. */
async get(path) {
}
/** Store a value. */
set(key, value) {
}`

	documented := ExtractDocumented(src)
	require.Len(t, documented, 2)

	merged := Merge(documented, ExtractBare(src, BareOptions{}))
	require.Len(t, merged, 2)
	assert.Equal(t, "get", merged[0].Name)
	assert.True(t, merged[0].IsAsync)
	assert.Equal(t, "Fetch a resource.", merged[0].Description)
	assert.Equal(t, "set", merged[1].Name)
	assert.Equal(t, "key, value", merged[1].RawParams)
}
