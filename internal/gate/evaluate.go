package gate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/draftgate/internal/model"
	"github.com/ppiankov/draftgate/internal/wordcount"
)

// evaluate runs one full evaluation pass over the document: the structural
// check, claim verification, and rubric critique run concurrently, and their
// results are merged deterministically regardless of completion order.
//
// Hard gates (word-count floor, contradicted claims) are kept separate from
// the soft rubric score so a high rubric score can never mask a fatally
// short or factually wrong draft.
func (c *Controller) evaluate(ctx context.Context, doc model.Document) (*model.QualityReport, error) {
	var (
		wg sync.WaitGroup

		wordCount   int
		lengthScore float64
		structural  []model.Issue

		claims      []model.Claim
		claimIssues []model.Issue

		critique  *Critique
		criticErr error
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		wordCount, lengthScore, structural = c.checkStructure(doc)
	}()

	go func() {
		defer wg.Done()
		claims, claimIssues = c.checkClaims(ctx, doc)
	}()

	go func() {
		defer wg.Done()
		critique, criticErr = c.caps.Critic.Critique(ctx, doc, c.rubricCategories())
	}()

	wg.Wait()

	if criticErr != nil {
		return nil, fmt.Errorf("critique: %w", criticErr)
	}
	for category, score := range critique.SubScores {
		if score < 0 || score > 10 {
			return nil, fmt.Errorf("%w: critic sub-score %q = %.2f outside [0,10]",
				ErrContractViolation, category, score)
		}
	}

	components := map[string]float64{"length": lengthScore}
	for category, score := range critique.SubScores {
		components[category] = score
	}
	overall := combineScores(c.cfg.Weights, components)

	issues := make([]model.Issue, 0, len(structural)+len(claimIssues)+len(critique.Issues))
	issues = append(issues, structural...)
	issues = append(issues, claimIssues...)
	issues = append(issues, critique.Issues...)
	model.SortIssues(issues)

	return &model.QualityReport{
		OverallScore: overall,
		WordCount:    wordCount,
		SubScores:    critique.SubScores,
		Claims:       claims,
		Issues:       issues,
		Passed:       overall >= c.cfg.PassThreshold && !model.HasCritical(issues),
		EvaluatedAt:  time.Now().UTC(),
	}, nil
}

// checkStructure computes the prose word count and the length component of
// the overall score. A draft below the word-count floor scores 0 on the
// length component and carries a critical issue, so it can never pass.
func (c *Controller) checkStructure(doc model.Document) (int, float64, []model.Issue) {
	var issues []model.Issue

	count := wordcount.Count(doc.Body)
	lengthScore := 10.0
	if count < c.cfg.MinWordCount {
		lengthScore = 0
		issues = append(issues, model.Issue{
			Category: model.CategoryLength,
			Severity: model.SeverityCritical,
			Description: fmt.Sprintf("draft has %d prose words, minimum is %d",
				count, c.cfg.MinWordCount),
		})
	}

	sections := doc.Sections()
	for _, required := range c.cfg.RequiredSections {
		if !hasSection(sections, required) {
			issues = append(issues, model.Issue{
				Category:    model.CategoryStructural,
				Severity:    model.SeverityHigh,
				Description: fmt.Sprintf("required section %q is missing", required),
			})
		}
	}

	return count, lengthScore, issues
}

// checkClaims extracts claims and verifies each one. Verification is
// fail-safe: a claim whose verification errors out is treated as unverified
// with zero confidence, never silently skipped.
func (c *Controller) checkClaims(ctx context.Context, doc model.Document) ([]model.Claim, []model.Issue) {
	extracted, err := c.caps.Extractor.ExtractClaims(ctx, doc)
	if err != nil {
		c.logf("claim extraction failed: %v", err)
		return nil, []model.Issue{{
			Category:    model.CategoryFactual,
			Severity:    model.SeverityMedium,
			Description: fmt.Sprintf("claim verification unavailable: %v", err),
		}}
	}
	if len(extracted) == 0 {
		return nil, nil
	}

	verified := make([]model.Claim, len(extracted))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.cfg.VerifyWorkers)

	for i, claim := range extracted {
		wg.Add(1)
		go func(idx int, cl model.Claim) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				cl.Verdict = model.VerdictUnverified
				cl.Confidence = 0
				verified[idx] = cl
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			result, err := c.caps.Verifier.Verify(ctx, cl)
			if err != nil {
				c.logf("verify claim %q: %v", cl.Text, err)
				cl.Verdict = model.VerdictUnverified
				cl.Confidence = 0
				verified[idx] = cl
				return
			}
			verified[idx] = result
		}(i, claim)
	}
	wg.Wait()

	var issues []model.Issue
	for _, claim := range verified {
		switch claim.Verdict {
		case model.VerdictContradicted:
			issues = append(issues, model.Issue{
				Category:       model.CategoryFactual,
				Severity:       model.SeverityCritical,
				Description:    fmt.Sprintf("claim contradicted by evidence: %s", claim.Text),
				TargetLocation: claim.Location,
			})
		case model.VerdictUnverified:
			if claim.Confidence < c.cfg.UnverifiedConfidenceFloor {
				issues = append(issues, model.Issue{
					Category:       model.CategoryFactual,
					Severity:       model.SeverityMedium,
					Description:    fmt.Sprintf("claim lacks supporting evidence: %s", claim.Text),
					TargetLocation: claim.Location,
				})
			}
		}
	}

	return verified, issues
}

// rubricCategories derives the critic's categories from the configured
// weights, minus the locally measured length component. Sorted for
// deterministic prompts.
func (c *Controller) rubricCategories() []string {
	categories := make([]string, 0, len(c.cfg.Weights))
	for name := range c.cfg.Weights {
		if name == "length" {
			continue
		}
		categories = append(categories, name)
	}
	sort.Strings(categories)
	if len(categories) == 0 {
		return model.DefaultRubricCategories()
	}
	return categories
}

// combineScores merges score components into the overall score via a fixed
// weighted average. The combination is pure and commutative: components are
// folded in sorted key order, so the result does not depend on which check
// finished first. Components without a configured weight are dropped and
// the remaining weights renormalized.
func combineScores(weights, components map[string]float64) float64 {
	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum, weightTotal float64
	for _, k := range keys {
		w, ok := weights[k]
		if !ok || w <= 0 {
			continue
		}
		sum += w * components[k]
		weightTotal += w
	}
	if weightTotal == 0 {
		return 0
	}
	return sum / weightTotal
}

func hasSection(sections []string, required string) bool {
	for _, s := range sections {
		if strings.Contains(strings.ToLower(s), strings.ToLower(required)) {
			return true
		}
	}
	return false
}
