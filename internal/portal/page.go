package portal

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/MrSnakeDoc/navsite/internal/domain"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Page is the view model of the portal page.
type Page struct {
	Title    string
	Theme    Theme
	Menu     []MenuItem
	Tools    []ToolView
	Skins    []Skin
	DateInfo domain.DateInfo
	Query    string
	Notice   string
}

// StyleVars renders the theme variables as CSS declarations. Values come
// from the static palette table.
func (p Page) StyleVars() template.CSS {
	var b strings.Builder
	for _, v := range Variables(p.Theme) {
		fmt.Fprintf(&b, "%s: %s; ", v.Name, v.Value)
	}
	return template.CSS(b.String())
}

// Highlight marks the query inside a tool name.
func (p Page) Highlight(name string) template.HTML {
	return Highlight(name, p.Query)
}

// Style is the inline CSS of a badge.
func (b Badge) Style() template.CSS {
	return template.CSS("background: " + b.Background() + ";")
}

// RenderPage writes the HTML page.
func RenderPage(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = "导航"
	}
	if p.Skins == nil {
		p.Skins = Skins()
	}
	if err := pageTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
