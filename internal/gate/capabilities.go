package gate

import (
	"context"
	"errors"

	"github.com/ppiankov/draftgate/internal/model"
)

// The controller consumes four narrow capabilities. Each is independently
// mockable; the llm package provides model-backed implementations.

// ClaimExtractor returns the checkable factual assertions in a document.
// Returned claims carry text and location only; verdicts are unset.
type ClaimExtractor interface {
	ExtractClaims(ctx context.Context, doc model.Document) ([]model.Claim, error)
}

// Verifier fills in the verdict and confidence for a single claim against
// its knowledge store.
type Verifier interface {
	Verify(ctx context.Context, claim model.Claim) (model.Claim, error)
}

// Critique is the structured output of a rubric evaluation.
type Critique struct {
	SubScores map[string]float64 // Per-category scores, each in [0,10]
	Issues    []model.Issue
}

// CriticJudge scores a document against a rubric and itemizes defects.
type CriticJudge interface {
	Critique(ctx context.Context, doc model.Document, categories []string) (*Critique, error)
}

// RevisionEngine produces a patched document that fixes issues in priority
// order while leaving unaffected sections untouched. The returned document
// must carry RevisionNumber exactly one above the input; the controller
// rejects anything else as a contract violation.
type RevisionEngine interface {
	Revise(ctx context.Context, doc model.Document, issues []model.Issue) (model.Document, error)
}

// Capabilities bundles the external collaborators the controller drives.
type Capabilities struct {
	Extractor ClaimExtractor
	Verifier  Verifier
	Critic    CriticJudge
	Reviser   RevisionEngine
}

// ErrContractViolation marks a structurally invalid result from a capability
// (a stale revision counter, a sub-score outside [0,10]). Contract violations
// are never retried; they indicate a correctness bug in a collaborator.
var ErrContractViolation = errors.New("capability contract violation")

// ErrEmptyDocument is returned by Run for an empty initial document, before
// any capability is invoked.
var ErrEmptyDocument = errors.New("initial document is empty")
