// Package knowledge holds the verifier's grounding material: a YAML-loaded
// store of reference statements with their sources, plus authority
// classification and accessibility checking for those sources.
package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one reference statement in the knowledge base.
type Entry struct {
	Statement string   `yaml:"statement" json:"statement"`
	Topics    []string `yaml:"topics,omitempty" json:"topics,omitempty"`
	SourceURL string   `yaml:"source_url,omitempty" json:"source_url,omitempty"`
}

// Snippet is a store entry selected as relevant to a claim, annotated with
// source standing for the verifier.
type Snippet struct {
	Statement  string
	SourceURL  string
	Authority  AuthorityTier
	SourceDead bool // Source URL failed the accessibility check
}

type storeFile struct {
	Entries []Entry `yaml:"entries"`
}

// Store is an in-memory knowledge base with keyword lookup.
type Store struct {
	entries     []Entry
	authority   *AuthorityClassifier
	deadSources map[string]bool
	fingerprint string
}

// Load reads a YAML knowledge base from disk.
func Load(path string, authority *AuthorityClassifier) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}

	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}

	return NewStore(file.Entries, authority), nil
}

// NewStore builds a store from entries.
func NewStore(entries []Entry, authority *AuthorityClassifier) *Store {
	if authority == nil {
		authority = NewAuthorityClassifier(nil, nil)
	}

	hash := sha256.New()
	for _, e := range entries {
		hash.Write([]byte(e.Statement))
		hash.Write([]byte{0})
		hash.Write([]byte(e.SourceURL))
		hash.Write([]byte{0})
	}

	return &Store{
		entries:     entries,
		authority:   authority,
		deadSources: make(map[string]bool),
		fingerprint: hex.EncodeToString(hash.Sum(nil)),
	}
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Fingerprint identifies the store contents; cached verification results
// keyed on it are invalidated when the knowledge base changes.
func (s *Store) Fingerprint() string {
	return s.fingerprint
}

// SourceURLs returns the distinct source URLs in the store.
func (s *Store) SourceURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, e := range s.entries {
		if e.SourceURL == "" || seen[e.SourceURL] {
			continue
		}
		seen[e.SourceURL] = true
		urls = append(urls, e.SourceURL)
	}
	return urls
}

// MarkDead records that a source URL failed its accessibility check.
// Snippets from dead sources are still returned but flagged, so the
// verifier can discount them.
func (s *Store) MarkDead(url string) {
	s.deadSources[url] = true
}

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Lookup returns up to limit snippets relevant to the query, ranked by
// keyword overlap. Ranking is deterministic: score descending, entry order
// as tie-break.
func (s *Store) Lookup(query string, limit int) []Snippet {
	if limit <= 0 {
		limit = 5
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	type scored struct {
		index int
		score int
	}
	var matches []scored

	for i, entry := range s.entries {
		entryTokens := tokenize(entry.Statement)
		for _, topic := range entry.Topics {
			for t := range tokenize(topic) {
				entryTokens[t] = true
			}
		}

		score := 0
		for token := range queryTokens {
			if entryTokens[token] {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{index: i, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].index < matches[j].index
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	snippets := make([]Snippet, 0, len(matches))
	for _, m := range matches {
		entry := s.entries[m.index]
		snippets = append(snippets, Snippet{
			Statement:  entry.Statement,
			SourceURL:  entry.SourceURL,
			Authority:  s.authority.Classify(entry.SourceURL),
			SourceDead: s.deadSources[entry.SourceURL],
		})
	}
	return snippets
}

// stopwords excluded from keyword matching
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "in": true, "on": true, "of": true, "to": true, "and": true,
	"or": true, "for": true, "by": true, "with": true, "that": true,
	"this": true, "it": true, "as": true, "at": true, "be": true,
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, t := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if len(t) < 2 || stopwords[t] {
			continue
		}
		tokens[t] = true
	}
	return tokens
}
