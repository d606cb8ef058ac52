package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/draftgate/internal/model"
)

// Extractor implements gate.ClaimExtractor on top of a chat provider.
type Extractor struct {
	chat   Chat
	config Config
}

// NewExtractor creates a new model-backed claim extractor
func NewExtractor(chat Chat, config Config) *Extractor {
	return &Extractor{chat: chat, config: config}
}

const extractorSystemPrompt = `You identify checkable factual assertions in articles: dated events, attributions, statistics, legal or scientific statements. You ignore opinions, predictions, and general advice. You respond with JSON only.`

type claimsPayload struct {
	Claims []struct {
		Text     string `json:"text"`
		Location string `json:"location"`
	} `json:"claims"`
}

// ExtractClaims returns the checkable assertions in the document. Verdicts
// are unset; verification is a separate capability.
func (e *Extractor) ExtractClaims(ctx context.Context, doc model.Document) ([]model.Claim, error) {
	resp, err := completeWithRetry(ctx, e.chat, CompletionRequest{
		System:      extractorSystemPrompt,
		Prompt:      buildExtractPrompt(doc),
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("extractor completion: %w", err)
	}

	var payload claimsPayload
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &payload); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	claims := make([]model.Claim, 0, len(payload.Claims))
	for _, raw := range payload.Claims {
		text := strings.TrimSpace(raw.Text)
		if text == "" {
			continue
		}
		claims = append(claims, model.Claim{
			Text:     text,
			Location: strings.TrimSpace(raw.Location),
			Verdict:  model.VerdictUnverified,
		})
	}

	return claims, nil
}

func buildExtractPrompt(doc model.Document) string {
	var b strings.Builder

	b.WriteString(`List every checkable factual assertion in the article below. For each:
- "text": the assertion, as a single self-contained sentence
- "location": the section heading it appears under

Respond with JSON in this exact shape:
{"claims": [{"text": "...", "location": "..."}]}

ARTICLE:
`)
	b.WriteString(doc.Body)

	return b.String()
}
