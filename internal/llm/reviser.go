package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/draftgate/internal/model"
)

// Reviser implements gate.RevisionEngine: a surgical editor that fixes the
// listed issues in priority order and leaves everything else untouched.
type Reviser struct {
	chat   Chat
	config Config
}

// NewReviser creates a new model-backed revision engine
func NewReviser(chat Chat, config Config) *Reviser {
	return &Reviser{chat: chat, config: config}
}

const reviserSystemPrompt = `You are a surgical article editor. You fix exactly the defects you are given, in the order given, and change nothing else. Sections without defects must remain byte-for-byte identical. You output the complete revised article in Markdown - no commentary, no preamble, no code fences.`

// Revise returns a patched document with the revision counter incremented.
func (r *Reviser) Revise(ctx context.Context, doc model.Document, issues []model.Issue) (model.Document, error) {
	if len(issues) == 0 {
		return model.Document{}, fmt.Errorf("revise called with no issues")
	}

	resp, err := completeWithRetry(ctx, r.chat, CompletionRequest{
		System:      reviserSystemPrompt,
		Prompt:      buildRevisePrompt(doc, issues),
		Temperature: 0.3,
	})
	if err != nil {
		return model.Document{}, fmt.Errorf("reviser completion: %w", err)
	}

	body := stripFences(resp.Text)
	if strings.TrimSpace(body) == "" {
		return model.Document{}, fmt.Errorf("reviser returned an empty document")
	}

	return model.Document{
		Title:          doc.Title,
		Body:           body,
		RevisionNumber: doc.RevisionNumber + 1,
		SourcePath:     doc.SourcePath,
	}, nil
}

func buildRevisePrompt(doc model.Document, issues []model.Issue) string {
	var b strings.Builder

	b.WriteString("Fix the following defects in the article, most important first:\n\n")
	for i, issue := range issues {
		fmt.Fprintf(&b, "%d. [%s/%s] %s", i+1, issue.Severity, issue.Category, issue.Description)
		if issue.TargetLocation != "" {
			fmt.Fprintf(&b, " (section: %s)", issue.TargetLocation)
		} else {
			b.WriteString(" (whole article)")
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Rules:
- Fix defects in the order listed; whole-article defects last.
- Do not rewrite sections that have no defects.
- Keep the heading structure unless a defect requires changing it.
- Output ONLY the complete revised article in Markdown.

ARTICLE:
`)
	b.WriteString(doc.Body)

	return b.String()
}

// stripFences removes a wrapping markdown code fence if the model added one
// despite instructions.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines[1:], "\n"))
}
