package portal

import "github.com/MrSnakeDoc/navsite/internal/domain"

// DefaultCategories is the category order of the offline dataset.
var DefaultCategories = []string{"Code", "设计", "工具", "学习"}

var defaultLinks = map[string][][3]string{
	"Code": {
		{"GitHub", "https://github.com", "bi-github"},
		{"Stack Overflow", "https://stackoverflow.com", "bi-stack-overflow"},
		{"MDN", "https://developer.mozilla.org", "bi-book"},
	},
	"设计": {
		{"Figma", "https://figma.com", "bi-palette"},
		{"Dribbble", "https://dribbble.com", "bi-dribbble"},
		{"Unsplash", "https://unsplash.com", "bi-image"},
	},
	"工具": {
		{"Notion", "https://notion.so", "bi-journal-text"},
		{"Trello", "https://trello.com", "bi-kanban"},
		{"TinyPNG", "https://tinypng.com", ""},
	},
	"学习": {
		{"Coursera", "https://coursera.org", "bi-mortarboard"},
		{"LeetCode", "https://leetcode.cn", ""},
		{"知乎", "https://zhihu.com", "bi-question-circle"},
	},
}

// DefaultNavigation builds a fresh copy of the offline dataset. Ids carry
// the mock prefix so write paths can recognise them.
func DefaultNavigation() *domain.NavigationMap {
	nav := domain.NewNavigationMap()
	n := 0
	for _, c := range DefaultCategories {
		for i, l := range defaultLinks[c] {
			n++
			nav.Append(c, domain.LinkRecord{
				ID:       domain.MockIDPrefix + "default_" + twoDigits(n),
				Name:     l[0],
				URL:      l[1],
				Category: c,
				Sort:     i + 1,
				Icon:     domain.ParseIcon(l[2]),
			})
		}
	}
	return nav
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10%10), byte('0' + n%10)})
}
