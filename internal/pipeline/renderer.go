package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/draftgate/internal/model"
)

// Renderer writes review outcomes as JSON, Markdown, or a terminal summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full loop result, audit trail included.
func (r *Renderer) RenderJSON(result *model.LoopResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes a human-readable review report.
func (r *Renderer) RenderMarkdown(result *model.LoopResult, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Review: %s\n\n", result.FinalDocument.Title)
	fmt.Fprintf(&b, "**Outcome:** %s\n\n", result.TerminalReason)
	if result.Err != "" {
		fmt.Fprintf(&b, "**Error:** %s\n\n", result.Err)
	}
	fmt.Fprintf(&b, "- Overall score: %.1f / 10\n", result.FinalReport.OverallScore)
	fmt.Fprintf(&b, "- Word count: %d\n", result.FinalReport.WordCount)
	fmt.Fprintf(&b, "- Revisions used: %d\n", result.IterationsUsed)
	fmt.Fprintf(&b, "- Final revision: %d\n\n", result.FinalDocument.RevisionNumber)

	if len(result.FinalReport.SubScores) > 0 {
		b.WriteString("## Rubric\n\n| Category | Score |\n|---|---|\n")
		for _, cat := range sortedKeys(result.FinalReport.SubScores) {
			fmt.Fprintf(&b, "| %s | %.1f |\n", cat, result.FinalReport.SubScores[cat])
		}
		b.WriteString("\n")
	}

	if len(result.FinalReport.Issues) > 0 {
		b.WriteString("## Open issues\n\n")
		for _, issue := range result.FinalReport.Issues {
			fmt.Fprintf(&b, "- **[%s/%s]** %s", issue.Severity, issue.Category, issue.Description)
			if issue.TargetLocation != "" {
				fmt.Fprintf(&b, " _(section: %s)_", issue.TargetLocation)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if unchecked := claimSummary(result.FinalReport.Claims); unchecked != "" {
		b.WriteString("## Claims\n\n")
		b.WriteString(unchecked)
		b.WriteString("\n")
	}

	if len(result.Audit) > 0 {
		b.WriteString("## Iterations\n\n| Iteration | Revision | Score | Passed |\n|---|---|---|---|\n")
		for _, rec := range result.Audit {
			fmt.Fprintf(&b, "| %d | %d | %.1f | %v |\n",
				rec.Iteration, rec.RevisionNumber, rec.Report.OverallScore, rec.Report.Passed)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n_Generated by draftgate_\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// RenderSummary prints a one-screen verdict to stdout.
func (r *Renderer) RenderSummary(result *model.LoopResult) {
	fmt.Printf("\n%s: %s\n", result.FinalDocument.Title, verdictLine(result))
	fmt.Printf("  Score: %.1f/10  Words: %d  Revisions: %d\n",
		result.FinalReport.OverallScore, result.FinalReport.WordCount, result.IterationsUsed)

	critical := 0
	for _, issue := range result.FinalReport.Issues {
		if issue.Severity == model.SeverityCritical {
			critical++
		}
	}
	if len(result.FinalReport.Issues) > 0 {
		fmt.Printf("  Open issues: %d (%d critical)\n", len(result.FinalReport.Issues), critical)
	}
	if result.Err != "" {
		fmt.Printf("  Error: %s\n", result.Err)
	}
}

func verdictLine(result *model.LoopResult) string {
	switch result.TerminalReason {
	case model.ReasonPassed:
		return "PASSED"
	case model.ReasonExhausted:
		return "FAILED (iteration budget spent; best draft retained)"
	case model.ReasonCancelled:
		return "CANCELLED"
	default:
		return "ERROR"
	}
}

func claimSummary(claims []model.Claim) string {
	if len(claims) == 0 {
		return ""
	}

	var verified, unverified, contradicted int
	var b strings.Builder
	for _, c := range claims {
		switch c.Verdict {
		case model.VerdictVerified:
			verified++
		case model.VerdictContradicted:
			contradicted++
			fmt.Fprintf(&b, "- ❌ %s", c.Text)
			if c.Source != "" {
				fmt.Fprintf(&b, " _(contradicted by %s)_", c.Source)
			}
			b.WriteString("\n")
		default:
			unverified++
		}
	}

	header := fmt.Sprintf("%d checked: %d verified, %d unverified, %d contradicted\n\n",
		len(claims), verified, unverified, contradicted)
	return header + b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
