// Package wordcount provides markup-aware prose word counting for Markdown
// drafts. Formatting syntax (heading markers, list bullets, emphasis, link
// targets, inline HTML) is stripped before counting, so the count reflects
// actual prose.
package wordcount

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	orderedListRe = regexp.MustCompile(`^\d+[.)]\s+`)
	imageRe       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	fenceRe       = regexp.MustCompile("^(```|~~~)")
)

// Count returns the number of prose words in a Markdown body. Counting is
// pure: the same body always yields the same count.
func Count(body string) int {
	return len(strings.Fields(StripMarkup(body)))
}

// StripMarkup removes Markdown syntax and inline HTML from a body, leaving
// only prose. Fenced code blocks are dropped entirely; they are not prose.
func StripMarkup(body string) string {
	var out strings.Builder
	inFence := false

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)

		if fenceRe.MatchString(trimmed) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		// Horizontal rules and table separators carry no prose
		if isRuleLine(trimmed) {
			continue
		}

		trimmed = stripLinePrefix(trimmed)
		trimmed = stripInline(trimmed)

		if trimmed != "" {
			out.WriteString(trimmed)
			out.WriteString("\n")
		}
	}

	return stripHTML(out.String())
}

// stripLinePrefix removes block-level markers: heading hashes, blockquote
// angles, and list bullets.
func stripLinePrefix(line string) string {
	for {
		switch {
		case strings.HasPrefix(line, "#"):
			line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		case strings.HasPrefix(line, ">"):
			line = strings.TrimSpace(strings.TrimPrefix(line, ">"))
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "), strings.HasPrefix(line, "+ "):
			line = strings.TrimSpace(line[2:])
		case orderedListRe.MatchString(line):
			line = orderedListRe.ReplaceAllString(line, "")
		default:
			return line
		}
	}
}

// stripInline removes inline markers: images, link targets, emphasis, code
// spans, and table pipes. Link anchor text is kept; it is prose.
func stripInline(line string) string {
	line = imageRe.ReplaceAllString(line, "")
	line = linkRe.ReplaceAllString(line, "$1")
	line = strings.NewReplacer("**", "", "__", "", "*", "", "_", " ", "`", "", "|", " ").Replace(line)
	return strings.TrimSpace(line)
}

// stripHTML drops inline HTML tags, keeping visible text. Scripts and styles
// are skipped entirely.
func stripHTML(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				buf.WriteString(t)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String()
}

func isRuleLine(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		switch r {
		case '-', '*', '_', '=', '|', ':', ' ':
		default:
			return false
		}
	}
	return true
}
