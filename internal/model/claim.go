package model

// Claim represents a checkable factual assertion extracted from a document.
// Claims are extracted fresh on every evaluation pass; they are never carried
// across revisions because a revision can change or remove them.
type Claim struct {
	Text       string  `json:"text"`                 // The claim text itself
	Location   string  `json:"location,omitempty"`   // Section heading the claim came from
	Verdict    Verdict `json:"verdict"`              // Verification outcome
	Confidence float64 `json:"confidence"`           // Verifier confidence in [0,1]
	Source     string  `json:"source,omitempty"`     // Knowledge-store source backing the verdict
}

// Verdict is the verification outcome for a claim.
type Verdict string

const (
	VerdictVerified     Verdict = "verified"     // Supported by the knowledge store
	VerdictUnverified   Verdict = "unverified"   // No supporting or contradicting evidence
	VerdictContradicted Verdict = "contradicted" // Knowledge store contradicts the claim
)
