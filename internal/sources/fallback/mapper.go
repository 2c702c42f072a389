package fallback

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/navsite/internal/domain"
)

// Map converts a Dataset to a navigation map. Category order follows the
// file, links inside a category are sorted like table rows.
func Map(ds Dataset) (*domain.NavigationMap, error) {
	nav := domain.NewNavigationMap()
	count := 0

	for _, entry := range ds {
		category := strings.TrimSpace(entry.Category)
		if category == "" {
			category = domain.DefaultCategory
		}

		for _, l := range entry.Links {
			// Same rule as table rows
			if strings.TrimSpace(l.Name) == "" && strings.TrimSpace(l.URL) == "" {
				continue
			}
			count++
			id := l.ID
			if id == "" {
				id = fmt.Sprintf("%s%03d", domain.MockIDPrefix, count)
			}
			nav.Append(category, domain.LinkRecord{
				ID:       id,
				Name:     l.Name,
				URL:      l.URL,
				Category: category,
				Sort:     l.Sort,
				Icon:     domain.ParseIcon(l.Icon),
			})
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no valid links found in fallback dataset")
	}

	for _, c := range nav.Categories() {
		links := nav.Links(c)
		sort.SliceStable(links, func(i, j int) bool { return links[i].Sort < links[j].Sort })
		nav.Set(c, links)
	}

	return nav, nil
}

// LoadNavigation is Load followed by Map.
func (l *Loader) LoadNavigation() (*domain.NavigationMap, error) {
	ds, err := l.Load()
	if err != nil {
		return nil, err
	}
	return Map(ds)
}
