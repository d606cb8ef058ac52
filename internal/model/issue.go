package model

import "sort"

// Issue is a single actionable defect found by an evaluator. Issues carry
// enough location information for a surgical fix; an issue without a
// TargetLocation applies to the whole document and is fixed last.
type Issue struct {
	Category       IssueCategory `json:"category"`
	Severity       Severity      `json:"severity"`
	Description    string        `json:"description"`
	TargetLocation string        `json:"target_location,omitempty"` // Section heading, empty = whole document
}

// IssueCategory classifies which evaluator produced the issue.
type IssueCategory string

const (
	CategoryFactual    IssueCategory = "factual"
	CategoryStructural IssueCategory = "structural"
	CategoryLength     IssueCategory = "length"
	CategoryQuality    IssueCategory = "quality"
)

// Severity indicates how badly an issue blocks publication.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRank orders severities for sorting, most severe first.
func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// categoryRank orders categories for tie-breaking: factual defects are fixed
// before structural, structural before length, length before style.
func categoryRank(c IssueCategory) int {
	switch c {
	case CategoryFactual:
		return 0
	case CategoryStructural:
		return 1
	case CategoryLength:
		return 2
	case CategoryQuality:
		return 3
	default:
		return 4
	}
}

// SortIssues orders issues by severity descending, ties broken by category
// priority, with located issues before whole-document issues so the revision
// engine can fix surgical targets first. The sort is stable, so the merge is
// deterministic regardless of which evaluator finished first.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		si, sj := severityRank(issues[i].Severity), severityRank(issues[j].Severity)
		if si != sj {
			return si < sj
		}
		ci, cj := categoryRank(issues[i].Category), categoryRank(issues[j].Category)
		if ci != cj {
			return ci < cj
		}
		// Located issues come before whole-document issues
		return issues[i].TargetLocation != "" && issues[j].TargetLocation == ""
	})
}

// HasCritical reports whether any issue in the list is critical.
func HasCritical(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
