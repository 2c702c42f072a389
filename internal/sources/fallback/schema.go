package fallback

// Dataset is the top-level structure of a fallback file: an ordered list of
// categories, each with its links.
type Dataset []CategoryEntry

// CategoryEntry groups the links of one category.
type CategoryEntry struct {
	Category string      `yaml:"category"`
	Links    []LinkEntry `yaml:"links"`
}

// LinkEntry is one link of the fallback dataset.
type LinkEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Sort int    `yaml:"sort,omitempty"`
	Icon string `yaml:"icon,omitempty"`
}
