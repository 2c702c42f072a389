package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MockIDPrefix marks records that come from the fallback dataset.
// They do not exist in the remote table, so mutations on them always fail.
const MockIDPrefix = "mock_"

// DefaultCategory is used when a record carries no category.
const DefaultCategory = "其它"

// IsMockID reports whether id belongs to the fallback dataset.
func IsMockID(id string) bool {
	return strings.HasPrefix(id, MockIDPrefix)
}

// LinkRecord is one bookmarked site as exposed to clients.
type LinkRecord struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is the remote record id (or a mock_ id for fallback data).
	ID string `json:"id"`

	// ─────────────────────────────
	// Display
	// ─────────────────────────────

	Name string `json:"name"`

	// URL is always a plain string: the {link,text} variant is
	// normalised at ingestion.
	URL string `json:"url"`

	Category string `json:"category"`

	// Sort orders records inside a category (ascending).
	Sort int `json:"sort"`

	Icon Icon `json:"icon"`
}

// IconKind tags the Icon variant.
type IconKind int

const (
	IconNone IconKind = iota
	IconURL
	IconSymbolic
)

func (k IconKind) String() string {
	switch k {
	case IconURL:
		return "url"
	case IconSymbolic:
		return "symbolic"
	default:
		return "none"
	}
}

// Icon is either an image URL, a symbolic icon class name (e.g. "bi-github")
// or nothing. It is decided once, when the record is ingested.
type Icon struct {
	Kind  IconKind
	Value string
}

// ParseIcon classifies a raw icon string.
func ParseIcon(raw string) Icon {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Icon{}
	case strings.HasPrefix(raw, "http"):
		return Icon{Kind: IconURL, Value: raw}
	default:
		return Icon{Kind: IconSymbolic, Value: raw}
	}
}

func (i Icon) IsZero() bool { return i.Kind == IconNone }

func (i Icon) String() string { return i.Value }

// MarshalJSON keeps the wire format a plain string ("" when absent).
func (i Icon) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Value)
}

func (i *Icon) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*i = Icon{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("icon must be a string: %w", err)
	}
	*i = ParseIcon(s)
	return nil
}

// NavigationMap maps a category to its ordered links.
// Category order is the order in which categories were first added.
type NavigationMap struct {
	order []string
	items map[string][]LinkRecord
}

// NewNavigationMap returns an empty map ready for use.
func NewNavigationMap() *NavigationMap {
	return &NavigationMap{items: make(map[string][]LinkRecord)}
}

// Append adds a link to the end of its category, registering the category
// if it has not been seen yet.
func (m *NavigationMap) Append(category string, link LinkRecord) {
	if m.items == nil {
		m.items = make(map[string][]LinkRecord)
	}
	if _, ok := m.items[category]; !ok {
		m.order = append(m.order, category)
	}
	m.items[category] = append(m.items[category], link)
}

// Set replaces the links of a category.
func (m *NavigationMap) Set(category string, links []LinkRecord) {
	if m.items == nil {
		m.items = make(map[string][]LinkRecord)
	}
	if _, ok := m.items[category]; !ok {
		m.order = append(m.order, category)
	}
	m.items[category] = links
}

// Categories returns a copy of the category names in order.
func (m *NavigationMap) Categories() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Links returns the links of one category (nil if unknown).
func (m *NavigationMap) Links(category string) []LinkRecord {
	if m == nil {
		return nil
	}
	return m.items[category]
}

// All concatenates every category in order.
func (m *NavigationMap) All() []LinkRecord {
	if m == nil {
		return nil
	}
	var out []LinkRecord
	for _, c := range m.order {
		out = append(out, m.items[c]...)
	}
	return out
}

// Len returns the number of categories.
func (m *NavigationMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Find looks a link up by id.
func (m *NavigationMap) Find(id string) (LinkRecord, bool) {
	for _, l := range m.All() {
		if l.ID == id {
			return l, true
		}
	}
	return LinkRecord{}, false
}

// MarshalJSON writes the categories as a JSON object in insertion order.
func (m NavigationMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		links := m.items[c]
		if links == nil {
			links = []LinkRecord{}
		}
		val, err := json.Marshal(links)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the key order.
func (m *NavigationMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = NavigationMap{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("navigation map must be a JSON object")
	}

	fresh := NavigationMap{items: make(map[string][]LinkRecord)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected navigation map key %v", tok)
		}
		var links []LinkRecord
		if err := dec.Decode(&links); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		fresh.Set(key, links)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = fresh
	return nil
}
