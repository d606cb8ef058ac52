package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/draftgate/internal/model"
)

func TestLoadDraft_TitleFromHeading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.md")
	body := "Some preamble.\n\n# The Real Title\n\nBody text.\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDraft(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "The Real Title" {
		t.Errorf("expected title from heading, got %q", doc.Title)
	}
	if doc.Body != body {
		t.Errorf("body must be loaded verbatim")
	}
	if doc.RevisionNumber != 0 {
		t.Errorf("fresh drafts start at revision 0, got %d", doc.RevisionNumber)
	}
	if doc.SourcePath != path {
		t.Errorf("expected source path %q, got %q", path, doc.SourcePath)
	}
}

func TestLoadDraft_TitleFallsBackToFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my-article.md")
	if err := os.WriteFile(path, []byte("no headings here"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDraft(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "my-article" {
		t.Errorf("expected filename fallback, got %q", doc.Title)
	}
}

func TestLoadDraft_MissingFile(t *testing.T) {
	if _, err := LoadDraft(filepath.Join(t.TempDir(), "absent.md")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewReviewer_RequiresProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = ""

	if _, err := NewReviewer(cfg); err == nil {
		t.Fatal("expected error without an LLM provider")
	}
}

func TestNewReviewer_UnknownProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "not-a-provider"

	if _, err := NewReviewer(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
