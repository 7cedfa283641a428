// Package describe resolves the human-readable description of each
// extracted method.
package describe

import (
	"fmt"
	"strings"

	"github.com/gnana997/apisync/pkg/extractor"
	"github.com/gnana997/apisync/pkg/jstoken"
)

// wellKnown holds descriptions for methods that are commonly left
// undocumented in the source bundle. Names missing here get Generic.
var wellKnown = map[string]string{
	"getSetting":          "Get an application setting",
	"setSetting":          "Update an application setting",
	"showMessage":         "Show a message to the user",
	"showError":           "Show an error message to the user",
	"readFile":            "Read a file from the workspace",
	"writeFile":           "Write a file to the workspace",
	"openFile":            "Open a file in the editor",
	"executeCommand":      "Execute a registered command",
	"registerCommand":     "Register a command handler",
	"getWorkspaceFolders": "List the open workspace folders",
	"connectSocket":       "Open the socket connection",
	"sendMessage":         "Send a message over the socket connection",
	"onMessage":           "Subscribe to incoming socket messages",
}

// Resolver maps a method to its description. The zero value is not usable;
// construct with NewResolver.
type Resolver struct {
	table map[string]string
}

// NewResolver returns a Resolver over the built-in table extended by
// overrides. Override values replace built-in entries of the same name.
func NewResolver(overrides map[string]string) *Resolver {
	table := make(map[string]string, len(wellKnown)+len(overrides))
	for name, desc := range wellKnown {
		table[name] = desc
	}
	for name, desc := range overrides {
		if strings.TrimSpace(desc) == "" {
			continue
		}
		table[name] = desc
	}
	return &Resolver{table: table}
}

// Resolve returns, in order of preference, the description captured from
// the method's doc block, the table entry for its name, or a generic
// "<name> method from the API". The result is never empty, never spans
// lines and is safe inside a single-quoted literal.
func (r *Resolver) Resolve(d extractor.MethodDescriptor) string {
	// Matchers hand over descriptions already escaped.
	if desc := jstoken.CollapseSpace(d.Description); desc != "" {
		return desc
	}
	if desc, ok := r.table[d.Name]; ok {
		return jstoken.EscapeSingleQuoted(jstoken.CollapseSpace(desc))
	}
	return jstoken.EscapeSingleQuoted(Generic(d.Name))
}

// Enrich returns copies of descs with Description set by Resolve.
func (r *Resolver) Enrich(descs []extractor.MethodDescriptor) []extractor.MethodDescriptor {
	out := make([]extractor.MethodDescriptor, len(descs))
	for i, d := range descs {
		d.Description = r.Resolve(d)
		out[i] = d
	}
	return out
}

// Generic is the fallback description for a method nobody documented.
func Generic(name string) string {
	return fmt.Sprintf("%s method from the API", name)
}
