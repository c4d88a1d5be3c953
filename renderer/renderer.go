// Package renderer turns valuation results into markdown, HTML and workbooks.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/equity"
)

//go:embed templates/*.md
var templates embed.FS

// Options holds configuration for rendering the dashboard.
type Options struct {
	Currency     string // ISO code used to display amounts, USD if empty
	SkipHoldings bool   // Do not render the holdings section.
	SkipWarnings bool   // Do not render the warnings section.
}

// RenderDashboard renders live metrics to a markdown string.
func RenderDashboard(m *equity.LiveMetrics, opts Options) string {
	partials := map[string]string{
		"dashboard_title":      "dashboard_title.md",
		"dashboard_returns":    "dashboard_returns.md",
		"dashboard_holdings":   "dashboard_holdings.md",
		"dashboard_allocation": "dashboard_allocation.md",
		"dashboard_warnings":   "dashboard_warnings.md",
	}
	// An empty file name results in an empty template.
	if opts.SkipHoldings {
		partials["dashboard_holdings"] = ""
	}
	if opts.SkipWarnings {
		partials["dashboard_warnings"] = ""
	}
	return renderTemplate("dashboard", "dashboard.md", partials, funcs(opts.Currency), m)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, fm template.FuncMap, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(fm).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
