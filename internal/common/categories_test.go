package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestLoadCategories(t *testing.T) {
	path := writeFile(t, "categories:\n  - fitness\n  - Learning\n")

	got, err := LoadCategories(path)
	if err != nil {
		t.Fatalf("LoadCategories failed: %v", err)
	}
	if len(got) != 2 || got[0] != "fitness" || got[1] != "Learning" {
		t.Errorf("unexpected categories: %v", got)
	}
}

func TestLoadCategoriesMissingFile(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "nope.yaml")} {
		got, err := LoadCategories(path)
		if err != nil {
			t.Errorf("LoadCategories(%q) returned error: %v", path, err)
		}
		if got != nil {
			t.Errorf("LoadCategories(%q) = %v, want nil", path, got)
		}
	}
}

func TestLoadCategoriesRejectsBadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty entry", "categories:\n  - fitness\n  - \"  \"\n"},
		{"malformed yaml", "categories: [fitness\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCategories(writeFile(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
