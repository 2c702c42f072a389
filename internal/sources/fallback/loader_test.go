package fallback

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/navsite/internal/domain"
)

func TestLoaderBuiltin(t *testing.T) {
	nav, err := NewLoader("").LoadNavigation()
	if err != nil {
		t.Fatalf("LoadNavigation() error = %v", err)
	}

	want := []string{"Code", "设计", "产品", "其它"}
	got := nav.Categories()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Categories() = %v, want %v", got, want)
	}

	all := nav.All()
	if len(all) != 16 {
		t.Fatalf("expected 16 links, got %d", len(all))
	}
	for _, l := range all {
		if !domain.IsMockID(l.ID) {
			t.Errorf("link %q has non-mock id %q", l.Name, l.ID)
		}
	}

	first := nav.Links("Code")[0]
	if first.Name != "GitHub" || first.Icon.Kind != domain.IconSymbolic || first.Icon.Value != "bi-github" {
		t.Errorf("unexpected first link: %+v", first)
	}
}

func TestLoaderFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "fallback.yaml")

	yamlContent := `---
- category: Tools
  links:
    - name: Second
      url: https://b.example.com
      sort: 2
    - name: First
      url: https://a.example.com
      sort: 1
      icon: https://a.example.com/icon.png
    - name: ""
      url: ""
- category: ""
  links:
    - name: Orphan
      url: https://c.example.com
`

	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	nav, err := NewLoader(yamlPath).LoadNavigation()
	if err != nil {
		t.Fatalf("LoadNavigation() error = %v", err)
	}

	tools := nav.Links("Tools")
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(tools))
	}
	if tools[0].Name != "First" || tools[1].Name != "Second" {
		t.Errorf("links not sorted: %v, %v", tools[0].Name, tools[1].Name)
	}
	if tools[0].Icon.Kind != domain.IconURL {
		t.Errorf("expected url icon, got %v", tools[0].Icon.Kind)
	}
	if tools[1].ID != "mock_001" {
		t.Errorf("generated id = %q, want mock_001", tools[1].ID)
	}

	other := nav.Links(domain.DefaultCategory)
	if len(other) != 1 || other[0].Name != "Orphan" {
		t.Errorf("expected orphan under default category, got %v", other)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMapEmptyDataset(t *testing.T) {
	_, err := Map(Dataset{{Category: "x"}})
	if err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestLoaderInvalidYAML(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(yamlPath, []byte("category: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewLoader(yamlPath).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
