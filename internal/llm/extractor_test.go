package llm

import (
	"context"
	"testing"

	"github.com/ppiankov/draftgate/internal/model"
)

func TestExtractor_ParsesClaims(t *testing.T) {
	withFakeSleep(t)

	chat := &mockChat{steps: []mockStep{
		{text: `{"claims": [` +
			`{"text": "The law took effect in 2024.", "location": "Background"},` +
			`{"text": "   ", "location": "Background"},` +
			`{"text": "Revenue grew 40% year over year.", "location": ""}]}`},
	}}
	extractor := NewExtractor(chat, DefaultConfig())

	claims, err := extractor.ExtractClaims(context.Background(), model.Document{Body: "# Background\ntext"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The blank claim is dropped
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if claims[0].Text != "The law took effect in 2024." || claims[0].Location != "Background" {
		t.Errorf("first claim wrong: %+v", claims[0])
	}
	for _, c := range claims {
		if c.Verdict != model.VerdictUnverified {
			t.Errorf("extracted claims must start unverified, got %v", c.Verdict)
		}
	}
}

func TestExtractor_NoClaims(t *testing.T) {
	withFakeSleep(t)

	chat := &mockChat{steps: []mockStep{
		{text: `{"claims": []}`},
	}}
	extractor := NewExtractor(chat, DefaultConfig())

	claims, err := extractor.ExtractClaims(context.Background(), model.Document{Body: "Pure opinion piece."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("expected no claims, got %d", len(claims))
	}
}

func TestExtractor_MalformedResponseIsError(t *testing.T) {
	withFakeSleep(t)

	chat := &mockChat{steps: []mockStep{
		{text: "no structured output here"},
	}}
	extractor := NewExtractor(chat, DefaultConfig())

	if _, err := extractor.ExtractClaims(context.Background(), model.Document{Body: "text"}); err == nil {
		t.Fatal("expected parse error")
	}
}
