// Package emitter renders the generated method list that the completion
// provider consumes.
package emitter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/gnana997/apisync/pkg/extractor"
	"github.com/gnana997/apisync/pkg/jstoken"
	"github.com/gnana997/apisync/pkg/signature"
)

const (
	DefaultBeginMarker = "// Auto-generated API methods"
	DefaultListName    = "apiMethods"
)

// Entry is one element of the generated list. All string fields must
// already be safe inside a single-quoted literal.
type Entry struct {
	Name        string `json:"name"`
	Signature   string `json:"signature"`
	Description string `json:"description"`
	IsAsync     bool   `json:"isAsync"`
}

// Options controls the shape of the emitted block.
type Options struct {
	// BeginMarker is the first line of the block. The anchor patcher
	// finds the block again by this line.
	BeginMarker string `yaml:"begin_marker"`

	// ListName is the name of the declared constant.
	ListName string `yaml:"list_name"`

	// ListType, when set, is emitted as a type annotation (TypeScript).
	ListType string `yaml:"list_type"`
}

func (o Options) withDefaults() Options {
	if o.BeginMarker == "" {
		o.BeginMarker = DefaultBeginMarker
	}
	if o.ListName == "" {
		o.ListName = DefaultListName
	}
	return o
}

var listNamePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

const blockTemplate = `{{.Begin}}
const {{.ListName}}{{if .ListType}}: {{.ListType}}{{end}} = [
{{- range .Entries}}
    {
        name: '{{.Name}}',
        signature: '{{.Signature}}',
        description: '{{.Description}}',
        isAsync: {{.IsAsync}}
    },
{{- end}}
];`

var block = template.Must(template.New("block").Parse(blockTemplate))

// Entries builds emitter entries from enriched descriptors, synthesizing
// each signature.
func Entries(descs []extractor.MethodDescriptor) []Entry {
	entries := make([]Entry, 0, len(descs))
	for _, d := range descs {
		entries = append(entries, Entry{
			Name:        d.Name,
			Signature:   jstoken.EscapeSingleQuoted(signature.Synthesize(d.Name, d.RawParams, d.IsAsync)),
			Description: d.Description,
			IsAsync:     d.IsAsync,
		})
	}
	return entries
}

// Validate checks entries for problems that would corrupt the generated
// file and returns all of them.
func Validate(entries []Entry) []error {
	var errs []error
	seen := make(map[string]bool, len(entries))

	for i, e := range entries {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("entries[%d]: name is required", i))
			continue
		}
		if seen[e.Name] {
			errs = append(errs, fmt.Errorf("entry %q: duplicate name", e.Name))
		}
		seen[e.Name] = true

		if e.Description == "" {
			errs = append(errs, fmt.Errorf("entry %q: description is required", e.Name))
		}
		if strings.ContainsAny(e.Signature+e.Description, "\n\r") {
			errs = append(errs, fmt.Errorf("entry %q: signature and description must be single-line", e.Name))
		}
	}

	return errs
}

// Emit renders entries as the generated block. Output is byte-identical for
// identical input; the block ends with "];" and no trailing newline.
func Emit(entries []Entry, opts Options) (string, error) {
	opts = opts.withDefaults()

	if !listNamePattern.MatchString(opts.ListName) {
		return "", fmt.Errorf("invalid list name %q", opts.ListName)
	}
	if strings.ContainsAny(opts.BeginMarker, "\n\r") {
		return "", fmt.Errorf("begin marker must be a single line")
	}
	if errs := Validate(entries); len(errs) > 0 {
		return "", fmt.Errorf("invalid entries: %w", errs[0])
	}

	var buf bytes.Buffer
	err := block.Execute(&buf, struct {
		Begin    string
		ListName string
		ListType string
		Entries  []Entry
	}{
		Begin:    opts.BeginMarker,
		ListName: opts.ListName,
		ListType: opts.ListType,
		Entries:  entries,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render block: %w", err)
	}

	return buf.String(), nil
}
