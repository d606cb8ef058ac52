package model

import "strings"

// Document is the candidate artifact under revision: an article draft in
// Markdown with section headings. Documents are immutable once handed to an
// evaluator; every revision produces a new Document with RevisionNumber
// incremented by exactly one.
type Document struct {
	Title          string `json:"title,omitempty"`     // Article title (usually the H1)
	Body           string `json:"body"`                // Markdown body with section headings
	RevisionNumber int    `json:"revision_number"`     // 0 for the initial draft
	SourcePath     string `json:"source_path,omitempty"` // File the draft was loaded from, if any
}

// Sections returns the section headings of the body, in document order.
// A section is any ATX heading line (#, ##, ...).
func (d Document) Sections() []string {
	var sections []string
	for _, line := range strings.Split(d.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		heading := strings.TrimLeft(trimmed, "#")
		heading = strings.TrimSpace(heading)
		if heading != "" {
			sections = append(sections, heading)
		}
	}
	return sections
}

// SectionCount returns the number of section headings in the body.
func (d Document) SectionCount() int {
	return len(d.Sections())
}

// IsEmpty reports whether the document has no prose content.
func (d Document) IsEmpty() bool {
	return strings.TrimSpace(d.Body) == ""
}
