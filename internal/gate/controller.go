// Package gate implements the quality-gate controller: a bounded iterative
// improvement loop that evaluates a draft, routes it to revision while it
// fails, and terminates with the best draft seen once it passes or the
// iteration budget is spent.
package gate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/draftgate/internal/model"
)

// Controller drives the EVALUATE / REVISE loop for one document at a time.
// Concurrent reviews each get their own Controller; instances share no state.
type Controller struct {
	cfg     model.GateConfig
	caps    Capabilities
	verbose bool
}

// NewController creates a controller with the given gate configuration and
// capabilities. Zero-valued config fields fall back to defaults.
func NewController(cfg model.GateConfig, caps Capabilities, verbose bool) *Controller {
	defaults := model.DefaultConfig().Gate

	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = defaults.PassThreshold
	}
	if cfg.MinWordCount <= 0 {
		cfg.MinWordCount = defaults.MinWordCount
	}
	if len(cfg.Weights) == 0 {
		cfg.Weights = defaults.Weights
	}
	if cfg.UnverifiedConfidenceFloor <= 0 {
		cfg.UnverifiedConfidenceFloor = defaults.UnverifiedConfidenceFloor
	}
	if cfg.VerifyWorkers < 1 {
		cfg.VerifyWorkers = defaults.VerifyWorkers
	}

	return &Controller{
		cfg:     cfg,
		caps:    caps,
		verbose: verbose,
	}
}

// loopState is the controller's bookkeeping for one run. The best document
// and its report always reflect the highest-scoring draft seen so far, so a
// failed run never discards useful partial progress.
type loopState struct {
	iterations int
	best       model.Document
	bestReport model.QualityReport
	bestScore  float64
	audit      []model.AuditRecord
}

// Run drives the loop over the initial document until it passes, the budget
// is exhausted, the run is cancelled, or a capability fails.
//
// A non-nil error is returned only for input validation; every other outcome,
// including capability failures, lands in LoopResult.TerminalReason so a
// caller always gets the best draft observed.
func (c *Controller) Run(ctx context.Context, initial model.Document) (*model.LoopResult, error) {
	if initial.IsEmpty() {
		return nil, ErrEmptyDocument
	}

	state := &loopState{best: initial, bestScore: -1}
	current := initial

	for {
		// Cancellation is honored between iterations, never mid-evaluation.
		if err := ctx.Err(); err != nil {
			return c.terminal(state, model.ReasonCancelled, ""), nil
		}

		report, err := c.evaluate(ctx, current)
		if err != nil {
			return c.terminal(state, model.ReasonError, err.Error()), nil
		}

		state.audit = append(state.audit, model.AuditRecord{
			Iteration:      state.iterations,
			RevisionNumber: current.RevisionNumber,
			Report:         *report,
			RecordedAt:     time.Now().UTC(),
		})
		c.logf("iteration %d: score %.1f, %d issues, passed=%v",
			state.iterations, report.OverallScore, len(report.Issues), report.Passed)

		// Track the best draft using the report that just evaluated it.
		if report.OverallScore > state.bestScore {
			state.best = current
			state.bestReport = *report
			state.bestScore = report.OverallScore
		}

		if report.Passed {
			result := c.terminal(state, model.ReasonPassed, "")
			result.FinalDocument = current
			result.FinalReport = *report
			return result, nil
		}

		if state.iterations >= c.cfg.MaxIterations {
			return c.terminal(state, model.ReasonExhausted, ""), nil
		}

		if err := ctx.Err(); err != nil {
			return c.terminal(state, model.ReasonCancelled, ""), nil
		}

		revised, err := c.caps.Reviser.Revise(ctx, current, report.Issues)
		if err != nil {
			return c.terminal(state, model.ReasonError, fmt.Sprintf("revise: %v", err)), nil
		}
		if revised.RevisionNumber != current.RevisionNumber+1 {
			err := fmt.Errorf("%w: revision number %d after revising %d, expected %d",
				ErrContractViolation, revised.RevisionNumber, current.RevisionNumber, current.RevisionNumber+1)
			return c.terminal(state, model.ReasonError, err.Error()), nil
		}

		state.iterations++
		current = revised
	}
}

// terminal assembles the final result from the loop state. The final
// document is the best-scoring draft seen, not necessarily the last one.
func (c *Controller) terminal(state *loopState, reason model.TerminalReason, errMsg string) *model.LoopResult {
	return &model.LoopResult{
		FinalDocument:  state.best,
		FinalReport:    state.bestReport,
		IterationsUsed: state.iterations,
		TerminalReason: reason,
		Err:            errMsg,
		Audit:          state.audit,
	}
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, "gate: "+format+"\n", args...)
	}
}
