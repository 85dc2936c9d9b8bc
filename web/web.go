// Package web holds the server-rendered HTML templates.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// InputLayout is the value format of an <input type="datetime-local" step="1">.
const InputLayout = "2006-01-02T15:04:05"

var pages = []string{"login", "register", "index", "error"}

// Renderer implements echo.Renderer over one template set per page, each
// sharing layout.html.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates. Times are rendered in loc.
func NewRenderer(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.UTC
	}
	funcs := template.FuncMap{
		"clock": func(t time.Time) string { return t.In(loc).Format("15:04:05") },
		"inputTime": func(t time.Time) string {
			return t.In(loc).Format(InputLayout)
		},
		"dayTitle": func(t time.Time) string { return t.Format("Monday, 2 January 2006") },
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the layout of page name with data.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
