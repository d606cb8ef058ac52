package model

import "time"

// QualityReport is the aggregate verdict for one evaluation pass. It is
// created once per loop iteration, immutable after creation, and archived
// in the audit trail.
type QualityReport struct {
	OverallScore float64            `json:"overall_score"`        // Weighted score in [0,10]
	WordCount    int                `json:"word_count"`           // Markup-stripped prose word count
	SubScores    map[string]float64 `json:"sub_scores,omitempty"` // Rubric sub-scores per category
	Claims       []Claim            `json:"claims,omitempty"`     // Claims checked this pass
	Issues       []Issue            `json:"issues,omitempty"`     // Ordered by severity desc
	Passed       bool               `json:"passed"`               // Score >= threshold and no critical issues
	EvaluatedAt  time.Time          `json:"evaluated_at"`
}

// TerminalReason is the final state of a review loop.
type TerminalReason string

const (
	ReasonPassed    TerminalReason = "passed"    // Quality bar met
	ReasonExhausted TerminalReason = "exhausted" // Iteration budget spent; best draft retained
	ReasonError     TerminalReason = "error"     // A capability failed or violated its contract
	ReasonCancelled TerminalReason = "cancelled" // External cancellation between iterations
)

// AuditRecord captures one loop iteration for observability. One record is
// emitted per evaluation pass.
type AuditRecord struct {
	Iteration      int           `json:"iteration"`       // REVISE transitions before this evaluation
	RevisionNumber int           `json:"revision_number"` // Revision of the evaluated document
	Report         QualityReport `json:"report"`
	RecordedAt     time.Time     `json:"recorded_at"`
}

// LoopResult is the outcome of one quality-gate run. The final document is
// always the best-scoring draft observed, never a worse later revision --
// even on exhaustion, partial progress is retained.
type LoopResult struct {
	FinalDocument  Document       `json:"final_document"`
	FinalReport    QualityReport  `json:"final_report"`
	IterationsUsed int            `json:"iterations_used"` // Number of REVISE transitions
	TerminalReason TerminalReason `json:"terminal_reason"`
	Err            string         `json:"error,omitempty"` // Populated when TerminalReason is "error"
	Audit          []AuditRecord  `json:"audit,omitempty"`
}
