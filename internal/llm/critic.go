package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/draftgate/internal/gate"
	"github.com/ppiankov/draftgate/internal/model"
)

// Critic implements gate.CriticJudge on top of a chat provider. It scores a
// draft against rubric categories and itemizes located defects.
type Critic struct {
	chat   Chat
	config Config
}

// NewCritic creates a new model-backed critic
func NewCritic(chat Chat, config Config) *Critic {
	return &Critic{chat: chat, config: config}
}

const criticSystemPrompt = `You are a content quality auditor evaluating blog articles for SEO quality and E-E-A-T compliance (Experience, Expertise, Authoritativeness, Trustworthiness). You respond with JSON only - no prose, no explanation outside the JSON.`

// critiquePayload is the JSON schema the critic model must produce.
type critiquePayload struct {
	SubScores map[string]float64 `json:"sub_scores"`
	Issues    []struct {
		Category       string `json:"category"`
		Severity       string `json:"severity"`
		Description    string `json:"description"`
		TargetLocation string `json:"target_location"`
	} `json:"issues"`
}

// Critique scores the document per rubric category and returns itemized
// issues. Sub-scores are passed through exactly as the model produced them;
// range validation is the controller's job.
func (c *Critic) Critique(ctx context.Context, doc model.Document, categories []string) (*gate.Critique, error) {
	resp, err := completeWithRetry(ctx, c.chat, CompletionRequest{
		System:      criticSystemPrompt,
		Prompt:      buildCritiquePrompt(doc, categories),
		Temperature: 0.2, // Low temp for consistent evaluation
	})
	if err != nil {
		return nil, fmt.Errorf("critic completion: %w", err)
	}

	var payload critiquePayload
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &payload); err != nil {
		return nil, fmt.Errorf("parse critique: %w", err)
	}
	if len(payload.SubScores) == 0 {
		return nil, fmt.Errorf("critique carries no sub-scores")
	}

	issues := make([]model.Issue, 0, len(payload.Issues))
	for _, raw := range payload.Issues {
		issues = append(issues, model.Issue{
			Category:       parseCategory(raw.Category),
			Severity:       parseSeverity(raw.Severity),
			Description:    strings.TrimSpace(raw.Description),
			TargetLocation: strings.TrimSpace(raw.TargetLocation),
		})
	}

	return &gate.Critique{
		SubScores: payload.SubScores,
		Issues:    issues,
	}, nil
}

func buildCritiquePrompt(doc model.Document, categories []string) string {
	var b strings.Builder

	b.WriteString("Evaluate the article below against these rubric categories, scoring each from 0 to 10:\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "- %s\n", cat)
	}

	b.WriteString(`
Also list concrete defects. For each defect give:
- "category": one of "factual", "structural", "length", "quality"
- "severity": one of "critical", "high", "medium", "low"
- "description": what is wrong, specific enough to fix
- "target_location": the exact section heading the defect is in, or "" for whole-article defects

Respond with JSON in this exact shape:
{"sub_scores": {"<category>": <0-10>, ...}, "issues": [{"category": "...", "severity": "...", "description": "...", "target_location": "..."}]}

ARTICLE:
`)
	b.WriteString(doc.Body)

	return b.String()
}

// parseCategory maps free-text categories onto the issue taxonomy; anything
// unrecognized lands in quality.
func parseCategory(s string) model.IssueCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "factual":
		return model.CategoryFactual
	case "structural", "structure":
		return model.CategoryStructural
	case "length":
		return model.CategoryLength
	default:
		return model.CategoryQuality
	}
}

// parseSeverity maps free-text severities; anything unrecognized is medium.
func parseSeverity(s string) model.Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return model.SeverityCritical
	case "high":
		return model.SeverityHigh
	case "low":
		return model.SeverityLow
	default:
		return model.SeverityMedium
	}
}
