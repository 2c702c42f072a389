package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Fields is the loosely typed column map of a table record.
type Fields map[string]any

// RawRecord is a record as returned by the table service.
type RawRecord struct {
	ID     string `json:"record_id"`
	Fields Fields `json:"fields"`
}

// Column aliases. The table may use English or localized column names.
var (
	nameColumns     = []string{"name", "站点名称"}
	urlColumns      = []string{"url", "网址"}
	categoryColumns = []string{"category", "分类"}
	sortColumns     = []string{"sort", "排序"}
	iconColumns     = []string{"icon", "备用图标"}
)

// Column names used when creating a record.
const (
	ColumnCategory = "分类"
	ColumnSort     = "排序"
	ColumnName     = "站点名称"
	ColumnURL      = "网址"
)

// LinkValue is the normalised form of a url cell, which arrives either as a
// plain string or as a {link,text} object.
type LinkValue struct {
	Link string `json:"link"`
	Text string `json:"text"`
}

// String prefers the link and falls back to the text.
func (v LinkValue) String() string {
	if v.Link != "" {
		return v.Link
	}
	return v.Text
}

// ParseLinkValue normalises any supported url cell shape.
func ParseLinkValue(raw any) LinkValue {
	switch v := raw.(type) {
	case nil:
		return LinkValue{}
	case string:
		return LinkValue{Link: v}
	case LinkValue:
		return v
	case map[string]any:
		return LinkValue{Link: stringOf(v["link"]), Text: stringOf(v["text"])}
	case []any:
		// Rich text cells come as a list of segments.
		for _, seg := range v {
			if lv := ParseLinkValue(seg); lv.String() != "" {
				return lv
			}
		}
	}
	return LinkValue{}
}

// Reshape groups records by category and orders each category by sort
// (ascending, stable). Records without name and url are dropped.
func Reshape(records []RawRecord) *NavigationMap {
	nav := NewNavigationMap()
	for _, rec := range records {
		link, ok := toLink(rec)
		if !ok {
			continue
		}
		nav.Append(link.Category, link)
	}
	for _, c := range nav.order {
		links := nav.items[c]
		sort.SliceStable(links, func(i, j int) bool { return links[i].Sort < links[j].Sort })
	}
	return nav
}

func toLink(rec RawRecord) (LinkRecord, bool) {
	name := strings.TrimSpace(firstText(rec.Fields, nameColumns))
	url := strings.TrimSpace(firstLink(rec.Fields, urlColumns))
	if name == "" && url == "" {
		return LinkRecord{}, false
	}

	category := strings.TrimSpace(firstText(rec.Fields, categoryColumns))
	if category == "" {
		category = DefaultCategory
	}

	return LinkRecord{
		ID:       rec.ID,
		Name:     name,
		URL:      url,
		Category: category,
		Sort:     firstInt(rec.Fields, sortColumns),
		Icon:     ParseIcon(firstLink(rec.Fields, iconColumns)),
	}, true
}

func firstText(f Fields, cols []string) string {
	for _, c := range cols {
		if s := textOf(f[c]); s != "" {
			return s
		}
	}
	return ""
}

func firstLink(f Fields, cols []string) string {
	for _, c := range cols {
		if s := ParseLinkValue(f[c]).String(); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(f Fields, cols []string) int {
	for _, c := range cols {
		if n, ok := intOf(f[c]); ok && n != 0 {
			return n
		}
	}
	return 0
}

// textOf reads a text cell: a string or a list of {text} segments.
func textOf(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []any:
		var b strings.Builder
		for _, seg := range v {
			if m, ok := seg.(map[string]any); ok {
				b.WriteString(stringOf(m["text"]))
			} else {
				b.WriteString(stringOf(seg))
			}
		}
		return b.String()
	case map[string]any:
		return stringOf(v["text"])
	}
	return ""
}

func stringOf(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return ""
}

func intOf(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(math.Trunc(v)), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return int(math.Trunc(f)), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return int(math.Trunc(f)), true
	}
	return 0, false
}
