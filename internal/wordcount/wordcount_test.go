package wordcount

import (
	"strings"
	"testing"
)

func TestCount_MarkupExcluded(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"heading marker", "# Heading", 1},
		{"deep heading", "### Three Word Heading", 3},
		{"list bullet", "- item", 1},
		{"star bullet", "* item", 1},
		{"ordered list", "1. first item", 2},
		{"blockquote", "> quoted words here", 3},
		{"emphasis", "some **bold** and *italic* text", 5},
		{"link keeps anchor", "see [the guide](https://example.com/guide) now", 4},
		{"image dropped", "![alt text](img.png) caption", 1},
		{"horizontal rule", "before\n\n---\n\nafter", 2},
		{"empty", "", 0},
		{"plain prose", "five plain prose words here", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.body); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.body, got, tt.want)
			}
		})
	}
}

func TestCount_FencedCodeExcluded(t *testing.T) {
	body := "intro words\n\n```go\nfunc main() {}\n```\n\noutro words"
	if got := Count(body); got != 4 {
		t.Errorf("expected 4 prose words, got %d", got)
	}
}

func TestCount_InlineHTMLStripped(t *testing.T) {
	body := "before <span class=\"x\">inside</span> after<br/>"
	if got := Count(body); got != 3 {
		t.Errorf("expected 3 words with tags stripped, got %d", got)
	}
}

func TestCount_Idempotent(t *testing.T) {
	body := "# Title\n\nSome prose with **markup** and a [link](https://example.com).\n\n- one\n- two\n"

	first := Count(body)
	second := Count(body)
	if first != second {
		t.Errorf("count not deterministic: %d then %d", first, second)
	}

	// Counting already-stripped text yields the same count
	stripped := StripMarkup(body)
	if got := len(strings.Fields(stripped)); got != first {
		t.Errorf("stripped count %d differs from direct count %d", got, first)
	}
}
