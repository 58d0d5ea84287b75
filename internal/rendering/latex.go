package rendering

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/jonathan/resume-genie/internal/types"
)

//go:embed templates/*.tex.tmpl
var templateFS embed.FS

// TemplateID selects one of the fixed resume layouts
type TemplateID int

const (
	// TemplateModern is the two-column layout with a dated footer
	TemplateModern TemplateID = 1
	// TemplateProfessional is the full-width layout with uppercase section headings
	TemplateProfessional TemplateID = 2
	// TemplateClassic is the minimal single-column layout
	TemplateClassic TemplateID = 3
)

// layout describes one template variant
type layout struct {
	ID       TemplateID
	Name     string
	File     string
	SkillSep string
	Footer   bool
}

var layouts = map[TemplateID]layout{
	TemplateModern:       {ID: TemplateModern, Name: "modern", File: "templates/modern.tex.tmpl", SkillSep: ", ", Footer: true},
	TemplateProfessional: {ID: TemplateProfessional, Name: "professional", File: "templates/professional.tex.tmpl", SkillSep: ` $\bullet$ `},
	TemplateClassic:      {ID: TemplateClassic, Name: "classic", File: "templates/classic.tex.tmpl", SkillSep: ` $\bullet$ `},
}

// parsed templates, keyed by layout; a parse failure is a build defect
var compiled = mustParseLayouts()

// Options tunes a render
type Options struct {
	// Now is the clock behind the "Last updated" footer; nil means time.Now
	Now func() time.Time
}

// ResolveTemplate maps a requested template number to a layout. Unknown numbers fall back to the modern layout.
func ResolveTemplate(id int) TemplateID {
	if _, ok := layouts[TemplateID(id)]; ok {
		return TemplateID(id)
	}
	return TemplateModern
}

// LayoutName returns the short name of the layout id resolves to
func LayoutName(id int) string {
	return layouts[ResolveTemplate(id)].Name
}

// Render produces a complete LaTeX document for record in the requested layout
func Render(record types.ResumeRecord, templateID int) (string, error) {
	return RenderWithOptions(record, templateID, Options{})
}

// RenderWithOptions is Render with an injectable clock
func RenderWithOptions(record types.ResumeRecord, templateID int, opts Options) (string, error) {
	l := layouts[ResolveTemplate(templateID)]
	tmpl, ok := compiled[l.ID]
	if !ok {
		return "", &RenderError{Message: fmt.Sprintf("no compiled template for layout %q", l.Name)}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	data := buildView(record, now())
	data.SkillSep = l.SkillSep
	data.Footer = l.Footer

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &TemplateError{
			Layout:  l.Name,
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	return result.String(), nil
}

// TemplateFilename names an exported document: resume_<layout>.tex, or resume_<layout>_<unix millis>.tex
func TemplateFilename(templateID int, now time.Time, withTimestamp bool) string {
	name := LayoutName(templateID)
	if withTimestamp {
		return fmt.Sprintf("resume_%s_%d.tex", name, now.UnixMilli())
	}
	return fmt.Sprintf("resume_%s.tex", name)
}

var templateFuncs = template.FuncMap{
	"join": func(items []string, sep string) string {
		return strings.Join(items, sep)
	},
	// joinNonEmpty joins the non-empty parts with sep
	"joinNonEmpty": func(sep string, parts ...string) string {
		kept := make([]string, 0, len(parts))
		for _, p := range parts {
			if p != "" {
				kept = append(kept, p)
			}
		}
		return strings.Join(kept, sep)
	},
	"prefix": func(p, s string) string {
		if s == "" {
			return ""
		}
		return p + s
	},
}

// parseLayout reads and parses the embedded template behind l
func parseLayout(l layout) (*template.Template, error) {
	content, err := templateFS.ReadFile(l.File)
	if err != nil {
		return nil, &TemplateError{
			Layout:  l.Name,
			Message: fmt.Sprintf("template file not found: %s", l.File),
			Cause:   err,
		}
	}

	tmpl, err := template.New(l.Name).
		Delims("<<", ">>").
		Funcs(templateFuncs).
		Option("missingkey=error").
		Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Layout:  l.Name,
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

func mustParseLayouts() map[TemplateID]*template.Template {
	out := make(map[TemplateID]*template.Template, len(layouts))
	for id, l := range layouts {
		tmpl, err := parseLayout(l)
		if err != nil {
			panic(err)
		}
		out[id] = tmpl
	}
	return out
}
