package portal

import (
	"context"
	"html"
	"html/template"
	"strings"

	"github.com/MrSnakeDoc/navsite/internal/domain"
)

// Searcher filters links by name.
type Searcher struct {
	data *DataManager
}

// NewSearcher searches the data held by dm.
func NewSearcher(dm *DataManager) *Searcher {
	return &Searcher{data: dm}
}

// Search returns the links whose name contains term (case-insensitive), in
// category order. If nothing was loaded yet it fetches once; the fetch
// always yields data (the offline dataset at worst), so there is no retry.
func (s *Searcher) Search(ctx context.Context, term string) []domain.LinkRecord {
	cur := s.data.Current()
	if cur == nil || cur.Data == nil {
		res := s.data.FetchNavigationData(ctx, false)
		cur = &res
	}
	return Filter(cur.Data, term)
}

// Filter applies the search rule to a navigation map. An empty term matches
// everything.
func Filter(nav *domain.NavigationMap, term string) []domain.LinkRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []domain.LinkRecord
	for _, l := range nav.All() {
		if term == "" || strings.Contains(strings.ToLower(l.Name), term) {
			out = append(out, l)
		}
	}
	return out
}

// Highlight escapes text and wraps case-insensitive occurrences of term in
// <mark>. The term is matched literally.
func Highlight(text, term string) template.HTML {
	term = strings.TrimSpace(term)
	if term == "" {
		return template.HTML(html.EscapeString(text))
	}

	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)
	// Case folding can change byte lengths; fall back to no highlight then.
	if len(lowerText) != len(text) || len(lowerTerm) != len(term) {
		return template.HTML(html.EscapeString(text))
	}

	var b strings.Builder
	i := 0
	for {
		j := strings.Index(lowerText[i:], lowerTerm)
		if j < 0 {
			b.WriteString(html.EscapeString(text[i:]))
			break
		}
		b.WriteString(html.EscapeString(text[i : i+j]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(text[i+j : i+j+len(term)]))
		b.WriteString("</mark>")
		i += j + len(term)
	}
	return template.HTML(b.String())
}
