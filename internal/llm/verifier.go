package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/draftgate/internal/cache"
	"github.com/ppiankov/draftgate/internal/knowledge"
	"github.com/ppiankov/draftgate/internal/model"
)

// Verifier implements gate.Verifier: it grounds each claim in knowledge-store
// snippets and asks the model for a support verdict. Without grounding
// material a claim stays unverified with zero confidence -- the verifier
// never lets the model judge a claim from its own training data alone.
type Verifier struct {
	chat   Chat
	config Config
	store  *knowledge.Store
	cache  cache.Cache
}

// NewVerifier creates a model-backed verifier over a knowledge store. The
// cache may be nil to disable memoization.
func NewVerifier(chat Chat, config Config, store *knowledge.Store, resultCache cache.Cache) *Verifier {
	return &Verifier{chat: chat, config: config, store: store, cache: resultCache}
}

const verifierSystemPrompt = `You judge whether a claim is supported by the reference statements provided - nothing else. You never use outside knowledge. If the references neither support nor contradict the claim, the verdict is "unverified". You respond with JSON only.`

type verdictPayload struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	SourceURL  string  `json:"source_url"`
}

// Verify fills in the verdict and confidence for one claim.
func (v *Verifier) Verify(ctx context.Context, claim model.Claim) (model.Claim, error) {
	if v.store == nil || v.store.Len() == 0 {
		claim.Verdict = model.VerdictUnverified
		claim.Confidence = 0
		return claim, nil
	}

	key := cache.Key("verify", claim.Text, v.store.Fingerprint())
	if v.cache != nil {
		if data, found := v.cache.Get(key); found {
			var cached model.Claim
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	snippets := v.store.Lookup(claim.Text, 5)
	if len(snippets) == 0 {
		claim.Verdict = model.VerdictUnverified
		claim.Confidence = 0
		v.memoize(key, claim)
		return claim, nil
	}

	resp, err := completeWithRetry(ctx, v.chat, CompletionRequest{
		System:      verifierSystemPrompt,
		Prompt:      buildVerifyPrompt(claim, snippets),
		Temperature: 0.0,
	})
	if err != nil {
		return claim, fmt.Errorf("verifier completion: %w", err)
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &payload); err != nil {
		return claim, fmt.Errorf("parse verdict: %w", err)
	}

	claim.Verdict = parseVerdict(payload.Verdict)
	claim.Confidence = clampConfidence(payload.Confidence)
	claim.Source = strings.TrimSpace(payload.SourceURL)

	// Discount claims resting on weak or dead sources
	claim.Confidence *= sourceFactor(snippets, claim.Source)

	v.memoize(key, claim)
	return claim, nil
}

func (v *Verifier) memoize(key string, claim model.Claim) {
	if v.cache == nil {
		return
	}
	if data, err := json.Marshal(claim); err == nil {
		_ = v.cache.Set(key, data, 0)
	}
}

func buildVerifyPrompt(claim model.Claim, snippets []knowledge.Snippet) string {
	var b strings.Builder

	b.WriteString("CLAIM:\n")
	b.WriteString(claim.Text)
	b.WriteString("\n\nREFERENCE STATEMENTS:\n")
	for i, s := range snippets {
		fmt.Fprintf(&b, "%d. %s", i+1, s.Statement)
		if s.SourceURL != "" {
			fmt.Fprintf(&b, " (source: %s, authority: %s)", s.SourceURL, s.Authority)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Judge ONLY from the reference statements above:
- "verified" if a reference supports the claim
- "contradicted" if a reference contradicts the claim
- "unverified" otherwise

Respond with JSON in this exact shape:
{"verdict": "verified|unverified|contradicted", "confidence": <0-1>, "source_url": "<the supporting or contradicting source, or empty>"}`)

	return b.String()
}

// sourceFactor scales confidence by the standing of the cited source.
// Claims resting on tertiary or dead sources are worth less.
func sourceFactor(snippets []knowledge.Snippet, citedURL string) float64 {
	for _, s := range snippets {
		if s.SourceURL != citedURL || citedURL == "" {
			continue
		}
		if s.SourceDead {
			return 0.4
		}
		switch s.Authority {
		case knowledge.TierPrimary:
			return 1.0
		case knowledge.TierSecondary:
			return 0.9
		case knowledge.TierTertiary:
			return 0.7
		}
		return 0.8
	}
	return 0.8 // No citation named; trust the verdict less
}

func parseVerdict(s string) model.Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verified":
		return model.VerdictVerified
	case "contradicted":
		return model.VerdictContradicted
	default:
		return model.VerdictUnverified
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
