package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Statement: "Sourdough fermentation relies on wild yeast and lactic acid bacteria", Topics: []string{"sourdough", "fermentation"}, SourceURL: "https://example.edu/fermentation"},
		{Statement: "Commercial baker's yeast was introduced in the 19th century", Topics: []string{"yeast", "history"}, SourceURL: "https://en.wikipedia.org/wiki/Yeast"},
		{Statement: "Hydration percentage changes crumb structure", Topics: []string{"baking"}, SourceURL: "https://blog.example.com/hydration"},
	}
}

func TestStore_Lookup_RanksByOverlap(t *testing.T) {
	store := NewStore(testEntries(), nil)

	snippets := store.Lookup("when was baker's yeast introduced", 5)
	if len(snippets) == 0 {
		t.Fatal("expected at least one snippet")
	}
	if snippets[0].SourceURL != "https://en.wikipedia.org/wiki/Yeast" {
		t.Errorf("expected yeast entry ranked first, got %s", snippets[0].SourceURL)
	}
}

func TestStore_Lookup_Limit(t *testing.T) {
	store := NewStore(testEntries(), nil)

	snippets := store.Lookup("sourdough yeast fermentation baking hydration", 2)
	if len(snippets) > 2 {
		t.Errorf("expected at most 2 snippets, got %d", len(snippets))
	}
}

func TestStore_Lookup_MatchesOnTopics(t *testing.T) {
	entries := []Entry{
		{Statement: "Starter cultures double in volume within four to eight hours", Topics: []string{"levain", "proofing"}, SourceURL: "https://example.edu/starters"},
		{Statement: "Oven spring depends on steam during the first ten minutes", SourceURL: "https://example.edu/oven"},
	}
	store := NewStore(entries, nil)

	// "levain" appears only in the entry's topics, never in a statement
	snippets := store.Lookup("how long does a levain take", 5)
	if len(snippets) != 1 {
		t.Fatalf("expected 1 snippet matched via topics, got %d", len(snippets))
	}
	if snippets[0].SourceURL != "https://example.edu/starters" {
		t.Errorf("expected the starters entry, got %s", snippets[0].SourceURL)
	}

	// Topic tokens add to statement tokens rather than replacing them
	if snippets := store.Lookup("starter cultures volume", 5); len(snippets) != 1 {
		t.Errorf("expected statement tokens to still match, got %d snippets", len(snippets))
	}
}

func TestStore_Lookup_NoMatch(t *testing.T) {
	store := NewStore(testEntries(), nil)

	if snippets := store.Lookup("quantum chromodynamics", 5); len(snippets) != 0 {
		t.Errorf("expected no snippets for unrelated query, got %d", len(snippets))
	}
}

func TestStore_Lookup_Deterministic(t *testing.T) {
	store := NewStore(testEntries(), nil)

	first := store.Lookup("yeast fermentation", 5)
	for i := 0; i < 20; i++ {
		again := store.Lookup("yeast fermentation", 5)
		if len(again) != len(first) {
			t.Fatal("lookup result count not deterministic")
		}
		for j := range again {
			if again[j].Statement != first[j].Statement {
				t.Fatal("lookup order not deterministic")
			}
		}
	}
}

func TestStore_MarkDead(t *testing.T) {
	store := NewStore(testEntries(), nil)
	store.MarkDead("https://en.wikipedia.org/wiki/Yeast")

	snippets := store.Lookup("baker's yeast introduced", 5)
	found := false
	for _, s := range snippets {
		if s.SourceURL == "https://en.wikipedia.org/wiki/Yeast" {
			found = true
			if !s.SourceDead {
				t.Error("expected snippet from dead source to be flagged")
			}
		}
	}
	if !found {
		t.Fatal("expected dead-source snippet to still be returned")
	}
}

func TestStore_Fingerprint_TracksContent(t *testing.T) {
	a := NewStore(testEntries(), nil)
	b := NewStore(testEntries(), nil)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical stores should share a fingerprint")
	}

	c := NewStore(append(testEntries(), Entry{Statement: "extra"}), nil)
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different stores should not share a fingerprint")
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")
	content := `entries:
  - statement: "Laksa is a spicy noodle dish"
    topics: [laksa, cuisine]
    source_url: "https://en.wikipedia.org/wiki/Laksa"
  - statement: "Rye flour ferments faster than wheat"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", store.Len())
	}

	urls := store.SourceURLs()
	if len(urls) != 1 || urls[0] != "https://en.wikipedia.org/wiki/Laksa" {
		t.Errorf("unexpected source URLs: %v", urls)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/kb.yaml", nil); err == nil {
		t.Error("expected error for missing knowledge base")
	}
}
