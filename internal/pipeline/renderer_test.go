package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/draftgate/internal/model"
)

func sampleResult() *model.LoopResult {
	report := model.QualityReport{
		OverallScore: 9.2,
		WordCount:    1840,
		SubScores:    map[string]float64{"seo": 9.0, "eeat": 9.5},
		Issues: []model.Issue{
			{Category: model.CategoryQuality, Severity: model.SeverityLow, Description: "thin conclusion", TargetLocation: "Conclusion"},
		},
		Claims: []model.Claim{
			{Text: "Launched in 2023.", Verdict: model.VerdictVerified, Confidence: 0.9},
			{Text: "Market doubled overnight.", Verdict: model.VerdictContradicted, Source: "https://example.org/report"},
		},
		Passed:      true,
		EvaluatedAt: time.Now().UTC(),
	}
	return &model.LoopResult{
		FinalDocument:  model.Document{Title: "Test Article", Body: "# Test Article\n\ntext", RevisionNumber: 1},
		FinalReport:    report,
		IterationsUsed: 1,
		TerminalReason: model.ReasonPassed,
		Audit: []model.AuditRecord{
			{Iteration: 0, RevisionNumber: 0, Report: model.QualityReport{OverallScore: 7.1}},
			{Iteration: 1, RevisionNumber: 1, Report: report},
		},
	}
}

func TestRenderJSON_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	renderer := NewRenderer(false)

	if err := renderer.RenderJSON(sampleResult(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.LoopResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TerminalReason != model.ReasonPassed || decoded.FinalReport.OverallScore != 9.2 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
	if len(decoded.Audit) != 2 {
		t.Errorf("audit trail must be serialized, got %d records", len(decoded.Audit))
	}
}

func TestRenderMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.md")
	renderer := NewRenderer(true)

	if err := renderer.RenderMarkdown(sampleResult(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"# Review: Test Article",
		"**Outcome:** passed",
		"Overall score: 9.2",
		"| eeat | 9.5 |",
		"thin conclusion",
		"1 contradicted",
		"Market doubled overnight.",
		"| 0 | 0 | 7.1 |",
		"_Generated by draftgate_",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoFooter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.md")
	renderer := NewRenderer(false)

	if err := renderer.RenderMarkdown(sampleResult(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Generated by draftgate") {
		t.Error("footer rendered despite being disabled")
	}
}
