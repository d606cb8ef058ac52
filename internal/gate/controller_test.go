package gate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/draftgate/internal/model"
)

// Mock capabilities

type mockExtractor struct {
	fn    func(doc model.Document) ([]model.Claim, error)
	calls int32
}

func (m *mockExtractor) ExtractClaims(ctx context.Context, doc model.Document) ([]model.Claim, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.fn == nil {
		return nil, nil
	}
	return m.fn(doc)
}

type mockVerifier struct {
	fn func(claim model.Claim) (model.Claim, error)
}

func (m *mockVerifier) Verify(ctx context.Context, claim model.Claim) (model.Claim, error) {
	if m.fn == nil {
		claim.Verdict = model.VerdictVerified
		claim.Confidence = 1.0
		return claim, nil
	}
	return m.fn(claim)
}

type mockCritic struct {
	fn func(doc model.Document) (*Critique, error)
}

func (m *mockCritic) Critique(ctx context.Context, doc model.Document, categories []string) (*Critique, error) {
	if m.fn == nil {
		return perfectCritique(), nil
	}
	return m.fn(doc)
}

type mockReviser struct {
	fn func(doc model.Document, issues []model.Issue) (model.Document, error)
}

func (m *mockReviser) Revise(ctx context.Context, doc model.Document, issues []model.Issue) (model.Document, error) {
	if m.fn == nil {
		doc.RevisionNumber++
		return doc, nil
	}
	return m.fn(doc, issues)
}

// Helpers

func perfectCritique() *Critique {
	return &Critique{SubScores: map[string]float64{
		"seo": 10, "eeat": 10, "structure": 10, "readability": 10,
	}}
}

func flatCritique(score float64) *Critique {
	return &Critique{SubScores: map[string]float64{
		"seo": score, "eeat": score, "structure": score, "readability": score,
	}}
}

func longDraft(words int) model.Document {
	return model.Document{
		Title: "Test Draft",
		Body:  "# Test Draft\n\n" + strings.Repeat("word ", words),
	}
}

func testConfig() model.GateConfig {
	return model.GateConfig{
		MaxIterations: 3,
		PassThreshold: 9.0,
		MinWordCount:  1500,
	}
}

func newTestController(caps Capabilities) *Controller {
	if caps.Extractor == nil {
		caps.Extractor = &mockExtractor{}
	}
	if caps.Verifier == nil {
		caps.Verifier = &mockVerifier{}
	}
	if caps.Critic == nil {
		caps.Critic = &mockCritic{}
	}
	if caps.Reviser == nil {
		caps.Reviser = &mockReviser{}
	}
	return NewController(testConfig(), caps, false)
}

// Tests

func TestRun_ImmediatePass(t *testing.T) {
	c := newTestController(Capabilities{})

	result, err := c.Run(context.Background(), longDraft(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TerminalReason != model.ReasonPassed {
		t.Errorf("expected terminal reason passed, got %s", result.TerminalReason)
	}
	if result.IterationsUsed != 0 {
		t.Errorf("expected 0 iterations, got %d", result.IterationsUsed)
	}
	if !result.FinalReport.Passed {
		t.Error("expected final report to pass")
	}
	if model.HasCritical(result.FinalReport.Issues) {
		t.Error("passed result must not carry critical issues")
	}
	if len(result.Audit) != 1 {
		t.Errorf("expected 1 audit record, got %d", len(result.Audit))
	}
}

func TestRun_OneSuccessfulRevision(t *testing.T) {
	// Iteration 0 carries one contradicted claim (critical) despite a high
	// rubric score; the revision fixes the claim and iteration 1 passes.
	extractor := &mockExtractor{fn: func(doc model.Document) ([]model.Claim, error) {
		if doc.RevisionNumber == 0 {
			return []model.Claim{{Text: "sourdough was invented in 1990", Location: "Test Draft"}}, nil
		}
		return []model.Claim{{Text: "sourdough predates recorded history", Location: "Test Draft"}}, nil
	}}
	verifier := &mockVerifier{fn: func(claim model.Claim) (model.Claim, error) {
		if strings.Contains(claim.Text, "1990") {
			claim.Verdict = model.VerdictContradicted
			claim.Confidence = 0.95
		} else {
			claim.Verdict = model.VerdictVerified
			claim.Confidence = 0.9
		}
		return claim, nil
	}}
	critic := &mockCritic{fn: func(doc model.Document) (*Critique, error) {
		return flatCritique(9.5), nil
	}}

	c := newTestController(Capabilities{Extractor: extractor, Verifier: verifier, Critic: critic})

	result, err := c.Run(context.Background(), longDraft(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TerminalReason != model.ReasonPassed {
		t.Fatalf("expected passed, got %s (err=%s)", result.TerminalReason, result.Err)
	}
	if result.IterationsUsed != 1 {
		t.Errorf("expected 1 iteration, got %d", result.IterationsUsed)
	}

	// The first pass must have failed on the critical factual issue even
	// though its score cleared the threshold.
	first := result.Audit[0].Report
	if first.Passed {
		t.Error("iteration 0 should fail on the contradicted claim")
	}
	if first.OverallScore < 9.0 {
		t.Errorf("iteration 0 score should clear threshold, got %.2f", first.OverallScore)
	}
	if !model.HasCritical(first.Issues) {
		t.Error("iteration 0 should carry a critical issue")
	}
}

func TestRun_Exhaustion_ReturnsBestDraft(t *testing.T) {
	// Scores by revision: 5.0, 6.0, 4.0, 5.5 -- never passing. The final
	// document must be revision 1, the best of the four evaluated drafts.
	scores := map[int]float64{0: 5.0, 1: 6.0, 2: 4.0, 3: 5.5}
	critic := &mockCritic{fn: func(doc model.Document) (*Critique, error) {
		return flatCritique(scores[doc.RevisionNumber]), nil
	}}

	c := newTestController(Capabilities{Critic: critic})

	result, err := c.Run(context.Background(), longDraft(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TerminalReason != model.ReasonExhausted {
		t.Fatalf("expected exhausted, got %s", result.TerminalReason)
	}
	if result.IterationsUsed != 3 {
		t.Errorf("expected 3 iterations, got %d", result.IterationsUsed)
	}
	if result.FinalDocument.RevisionNumber != 1 {
		t.Errorf("expected best draft to be revision 1, got %d", result.FinalDocument.RevisionNumber)
	}
	if len(result.Audit) != 4 {
		t.Errorf("expected 4 audit records, got %d", len(result.Audit))
	}

	// Best-effort monotonicity: never worse than the initial evaluation.
	if result.FinalReport.OverallScore < result.Audit[0].Report.OverallScore {
		t.Errorf("final score %.2f worse than initial %.2f",
			result.FinalReport.OverallScore, result.Audit[0].Report.OverallScore)
	}
}

func TestRun_Termination_AlwaysFailingEvaluator(t *testing.T) {
	critic := &mockCritic{fn: func(doc model.Document) (*Critique, error) {
		return flatCritique(1.0), nil
	}}

	cfg := testConfig()
	cfg.MaxIterations = 5
	c := NewController(cfg, Capabilities{
		Extractor: &mockExtractor{}, Verifier: &mockVerifier{},
		Critic: critic, Reviser: &mockReviser{},
	}, false)

	result, err := c.Run(context.Background(), longDraft(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IterationsUsed != 5 {
		t.Errorf("expected exactly 5 revise transitions, got %d", result.IterationsUsed)
	}
	if result.TerminalReason != model.ReasonExhausted {
		t.Errorf("expected exhausted, got %s", result.TerminalReason)
	}
}

func TestRun_LengthGate(t *testing.T) {
	// 800 words with a perfect rubric and no claims: the length component
	// caps the score below the threshold and adds the only (critical) issue.
	cfg := testConfig()
	cfg.MaxIterations = 1
	c := NewController(cfg, Capabilities{
		Extractor: &mockExtractor{}, Verifier: &mockVerifier{},
		Critic: &mockCritic{}, Reviser: &mockReviser{},
	}, false)

	result, err := c.Run(context.Background(), longDraft(800))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := result.Audit[0].Report
	if report.Passed {
		t.Error("short draft must not pass")
	}
	if report.OverallScore >= 9.0 {
		t.Errorf("expected capped score below threshold, got %.2f", report.OverallScore)
	}
	if len(report.Issues) != 1 {
		t.Fatalf("expected exactly one issue, got %d: %v", len(report.Issues), report.Issues)
	}
	issue := report.Issues[0]
	if issue.Category != model.CategoryLength || issue.Severity != model.SeverityCritical {
		t.Errorf("expected length/critical issue, got %s/%s", issue.Category, issue.Severity)
	}
}

func TestRun_RevisionCounterViolation(t *testing.T) {
	// A reviser that never increments the counter must terminate the run
	// with an error outcome, not loop forever.
	reviser := &mockReviser{fn: func(doc model.Document, issues []model.Issue) (model.Document, error) {
		return doc, nil
	}}
	critic := &mockCritic{fn: func(doc model.Document) (*Critique, error) {
		return flatCritique(2.0), nil
	}}

	c := newTestController(Capabilities{Critic: critic, Reviser: reviser})

	result, err := c.Run(context.Background(), longDraft(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TerminalReason != model.ReasonError {
		t.Fatalf("expected error outcome, got %s", result.TerminalReason)
	}
	if !strings.Contains(result.Err, "contract violation") {
		t.Errorf("expected contract violation message, got %q", result.Err)
	}
}

func TestRun_CriticFailure(t *testing.T) {
	critic := &mockCritic{fn: func(doc model.Document) (*Critique, error) {
		return nil, errors.New("connection refused")
	}}

	c := newTestController(Capabilities{Critic: critic})

	result, err := c.Run(context.Background(), longDraft(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TerminalReason != model.ReasonError {
		t.Errorf("expected error outcome, got %s", result.TerminalReason)
	}
	if result.Err == "" {
		t.Error("expected error detail, capability failures must not be swallowed")
	}
	// The initial draft is still returned.
	if result.FinalDocument.IsEmpty() {
		t.Error("expected best-effort document on error")
	}
}

func TestRun_EmptyDocument(t *testing.T) {
	extractor := &mockExtractor{}
	c := newTestController(Capabilities{Extractor: extractor})

	_, err := c.Run(context.Background(), model.Document{Body: "   "})
	if err == nil {
		t.Fatal("expected input validation error")
	}
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
	if atomic.LoadInt32(&extractor.calls) != 0 {
		t.Error("no capability should be invoked for invalid input")
	}
}

func TestRun_CancelledBetweenIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	critic := &mockCritic{fn: func(doc model.Document) (*Critique, error) {
		return flatCritique(3.0), nil
	}}
	reviser := &mockReviser{fn: func(doc model.Document, issues []model.Issue) (model.Document, error) {
		cancel() // Cancellation lands between iterations
		doc.RevisionNumber++
		return doc, nil
	}}

	c := newTestController(Capabilities{Critic: critic, Reviser: reviser})

	result, err := c.Run(ctx, longDraft(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TerminalReason != model.ReasonCancelled {
		t.Errorf("expected cancelled, got %s", result.TerminalReason)
	}
	if result.IterationsUsed != 1 {
		t.Errorf("expected 1 iteration before cancellation, got %d", result.IterationsUsed)
	}
	if result.FinalDocument.IsEmpty() {
		t.Error("expected best draft on cancellation")
	}
}

func TestRun_ReviserFailure(t *testing.T) {
	reviser := &mockReviser{fn: func(doc model.Document, issues []model.Issue) (model.Document, error) {
		return model.Document{}, errors.New("timeout after retries")
	}}
	critic := &mockCritic{fn: func(doc model.Document) (*Critique, error) {
		return flatCritique(2.0), nil
	}}

	c := newTestController(Capabilities{Critic: critic, Reviser: reviser})

	result, err := c.Run(context.Background(), longDraft(2000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TerminalReason != model.ReasonError {
		t.Errorf("expected error outcome, got %s", result.TerminalReason)
	}
	if !strings.Contains(result.Err, "revise") {
		t.Errorf("expected revise failure detail, got %q", result.Err)
	}
}
