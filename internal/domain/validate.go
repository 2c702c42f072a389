package domain

import (
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest accepted site name, in characters.
const MaxNameLength = 50

// DefaultSort is applied to new links created without a sort value.
const DefaultSort = 200

// NewLink is the payload of a create request.
type NewLink struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
	Sort     *int   `json:"sort,omitempty"`
}

// UnmarshalJSON accepts sort as a number (fractions truncated) or a numeric
// string. null, "" and false leave it unset.
func (n *NewLink) UnmarshalJSON(b []byte) error {
	type plain NewLink
	var raw struct {
		plain
		Sort any `json:"sort"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = NewLink(raw.plain)
	n.Sort = nil

	switch v := raw.Sort.(type) {
	case nil:
		return nil
	case bool:
		if !v {
			return nil
		}
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
	}
	sort, ok := intOf(raw.Sort)
	if !ok {
		return &ValidationError{Field: "sort", Message: "sort must be a number"}
	}
	n.Sort = &sort
	return nil
}

// Validate checks presence, length and URL parseability.
func (n *NewLink) Validate() error {
	if n == nil {
		return &ValidationError{Field: "body", Message: "request body is required"}
	}
	if strings.TrimSpace(n.Name) == "" {
		return &ValidationError{Field: "name", Message: "site name is required"}
	}
	if strings.TrimSpace(n.URL) == "" {
		return &ValidationError{Field: "url", Message: "site url is required"}
	}
	if strings.TrimSpace(n.Category) == "" {
		return &ValidationError{Field: "category", Message: "category is required"}
	}
	if !IsAbsoluteURL(n.URL) {
		return &ValidationError{Field: "url", Message: "invalid url, make sure it starts with http:// or https://"}
	}
	if utf8.RuneCountInString(n.Name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: "site name must not exceed 50 characters"}
	}
	return nil
}

// Fields builds the column map sent to the table service.
func (n *NewLink) Fields() Fields {
	sortValue := DefaultSort
	if n.Sort != nil && *n.Sort != 0 {
		sortValue = *n.Sort
	}
	return Fields{
		ColumnCategory: n.Category,
		ColumnSort:     sortValue,
		ColumnName:     n.Name,
		ColumnURL: map[string]any{
			"link": n.URL,
			"text": n.Name,
		},
	}
}

// IsAbsoluteURL reports whether raw parses as a URL with a scheme,
// the same acceptance rule a browser URL constructor applies.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}
