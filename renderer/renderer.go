// Package renderer turns snapshots and transaction logs into markdown
// reports. Reports are plain strings, ready for a terminal renderer or an
// AI prompt.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/portfoy/portfolio"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"holdings":   HoldingsMarkdown,
	"allocation": AllocationMarkdown,
	"signed":     func(m portfolio.Money) string { return m.SignedString() },
}

// renderTemplate renders templates/<file> with data. A broken template is
// a programming error, its message is returned in place of the report.
func renderTemplate(file string, data any) string {
	content, err := fs.ReadFile(templates, "templates/"+file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(file).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", file, err)
	}
	return b.String()
}
