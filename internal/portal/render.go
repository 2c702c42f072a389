package portal

import (
	"sync"

	"github.com/MrSnakeDoc/navsite/internal/domain"
)

// CategoryAll is the menu entry listing every category.
const CategoryAll = "all"

// IconKind says how a tool icon is drawn.
type IconKind string

const (
	IconImage    IconKind = "image"    // explicit icon url
	IconSymbolic IconKind = "symbolic" // icon font class
	IconFavicon  IconKind = "favicon"  // proxied favicon, badge shown if it fails to load
	IconBadge    IconKind = "badge"    // text badge only
)

// IconView is a resolved icon.
type IconView struct {
	Kind  IconKind
	Src   string
	Class string
	Badge Badge
}

// MenuItem is one entry of the category menu.
type MenuItem struct {
	Category string
	Label    string
	Icon     string
	Active   bool
}

// ToolView is one rendered link.
type ToolView struct {
	ID       string
	Name     string
	URL      string
	Category string
	Icon     IconView
	Demo     bool
}

// CategoryIcon picks the menu icon class of a category.
func CategoryIcon(category string) string {
	switch category {
	case "Code", "代码":
		return "bi-code-square"
	case "设计":
		return "bi-palette"
	case "产品":
		return "bi-diagram-3"
	default:
		return "bi-folder"
	}
}

// Renderer turns navigation data into view models.
type Renderer struct {
	favicons *FaviconResolver
	badges   *BadgeGenerator
	mode     func() Mode

	mu       sync.Mutex
	nav      *domain.NavigationMap
	selected string
	tools    []ToolView
}

// NewRenderer builds a renderer. mode reports the current light/dark mode
// used for badge colors.
func NewRenderer(favicons *FaviconResolver, badges *BadgeGenerator, mode func() Mode) *Renderer {
	return &Renderer{favicons: favicons, badges: badges, mode: mode, selected: CategoryAll}
}

// Load replaces the data. The selection falls back to all when its category
// disappeared.
func (r *Renderer) Load(nav *domain.NavigationMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nav = nav
	if r.selected != CategoryAll && nav.Links(r.selected) == nil {
		r.selected = CategoryAll
	}
	r.tools = r.build(r.selected)
}

// Menu returns the home entry followed by one entry per category.
func (r *Renderer) Menu() []MenuItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := []MenuItem{{Category: CategoryAll, Label: "首页", Icon: "bi-house", Active: r.selected == CategoryAll}}
	for _, c := range r.nav.Categories() {
		items = append(items, MenuItem{Category: c, Label: c, Icon: CategoryIcon(c), Active: r.selected == c})
	}
	return items
}

// ShowTools selects a category and returns its tools. CategoryAll
// concatenates every category in order.
func (r *Renderer) ShowTools(category string) []ToolView {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = category
	r.tools = r.build(category)
	return append([]ToolView(nil), r.tools...)
}

// Tools returns the tools of the current selection.
func (r *Renderer) Tools() []ToolView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ToolView(nil), r.tools...)
}

// Selected returns the current category.
func (r *Renderer) Selected() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}

// RefreshIcons regenerates badges so their lightness follows the mode.
func (r *Renderer) RefreshIcons() {
	r.mu.Lock()
	defer r.mu.Unlock()
	mode := r.mode()
	for i := range r.tools {
		t := &r.tools[i]
		if t.Icon.Kind == IconFavicon || t.Icon.Kind == IconBadge {
			t.Icon.Badge = r.badges.Generate(t.Name, mode)
		}
	}
}

// ToolViews resolves icons for an arbitrary list of links.
func (r *Renderer) ToolViews(links []domain.LinkRecord) []ToolView {
	mode := r.mode()
	out := make([]ToolView, 0, len(links))
	for _, l := range links {
		out = append(out, ToolView{
			ID:       l.ID,
			Name:     l.Name,
			URL:      l.URL,
			Category: l.Category,
			Icon:     r.resolveIcon(l, mode),
			Demo:     domain.IsMockID(l.ID),
		})
	}
	return out
}

func (r *Renderer) build(category string) []ToolView {
	var links []domain.LinkRecord
	if category == CategoryAll {
		links = r.nav.All()
	} else {
		links = r.nav.Links(category)
	}
	return r.ToolViews(links)
}

func (r *Renderer) resolveIcon(l domain.LinkRecord, mode Mode) IconView {
	switch l.Icon.Kind {
	case domain.IconURL:
		return IconView{Kind: IconImage, Src: l.Icon.Value}
	case domain.IconSymbolic:
		return IconView{Kind: IconSymbolic, Class: l.Icon.Value}
	}

	badge := r.badges.Generate(l.Name, mode)
	if l.URL != "" && r.favicons != nil {
		if src := r.favicons.Resolve(l.URL); src != "" {
			return IconView{Kind: IconFavicon, Src: src, Badge: badge}
		}
	}
	return IconView{Kind: IconBadge, Badge: badge}
}
