package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/draftgate/internal/cache"
	"github.com/ppiankov/draftgate/internal/gate"
	"github.com/ppiankov/draftgate/internal/knowledge"
	"github.com/ppiankov/draftgate/internal/llm"
	"github.com/ppiankov/draftgate/internal/model"
)

// Reviewer wires the quality-gate loop to its model-backed capabilities and
// the knowledge store. One Reviewer serves any number of drafts.
type Reviewer struct {
	controller *gate.Controller
	renderer   *Renderer
	store      *knowledge.Store
	config     *model.Config
}

// NewReviewer assembles a reviewer from configuration. The LLM provider is
// mandatory: without it there is no critic and no reviser.
func NewReviewer(cfg *model.Config) (*Reviewer, error) {
	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("no LLM provider configured (set llm.provider or --llm-provider)")
	}

	llmConfig := llm.ConfigFromModel(cfg.LLM)
	chat, err := llm.NewChat(llmConfig)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}

	resultCache := buildCache(cfg.Cache)

	store, err := loadStore(cfg, resultCache)
	if err != nil {
		return nil, err
	}

	caps := gate.Capabilities{
		Extractor: llm.NewExtractor(chat, llmConfig),
		Verifier:  llm.NewVerifier(chat, llmConfig, store, resultCache),
		Critic:    llm.NewCritic(chat, llmConfig),
		Reviser:   llm.NewReviser(chat, llmConfig),
	}

	return &Reviewer{
		controller: gate.NewController(cfg.Gate, caps, cfg.Output.Verbose),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		store:      store,
		config:     cfg,
	}, nil
}

// loadStore loads the knowledge base and, when configured, prunes dead
// sources so the verifier discounts claims resting on them.
func loadStore(cfg *model.Config, resultCache cache.Cache) (*knowledge.Store, error) {
	if cfg.Knowledge.Path == "" {
		return nil, nil
	}

	store, err := knowledge.Load(cfg.Knowledge.Path, knowledge.NewAuthorityClassifier(nil, nil))
	if err != nil {
		return nil, fmt.Errorf("load knowledge store: %w", err)
	}

	if cfg.Knowledge.CheckLinks {
		checker := knowledge.NewLinkChecker(
			cfg.HTTP.Timeout,
			cfg.HTTP.UserAgent,
			cfg.HTTP.RequestsPerSecond,
			cfg.HTTP.Burst,
			cfg.Concurrency.LinkWorkers,
			resultCache,
		)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		knowledge.Prune(ctx, store, checker)
	}

	return store, nil
}

func buildCache(cfg model.CacheConfig) cache.Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir != "" {
		return cache.NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
	}
	return cache.NewMemoryCache(cfg.MemoryTTL, cfg.MemoryTTL)
}

// ReviewResult contains the complete outcome for one draft.
type ReviewResult struct {
	Source string
	Result *model.LoopResult
	Error  error
}

// ReviewFile loads a Markdown draft from disk and runs it through the gate.
func (r *Reviewer) ReviewFile(ctx context.Context, path string) (*ReviewResult, error) {
	doc, err := LoadDraft(path)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return r.Review(ctx, doc)
}

// ReviewPath reviews one draft file and returns the bare loop result. It is
// the shape the batch worker expects.
func (r *Reviewer) ReviewPath(ctx context.Context, path string) (*model.LoopResult, error) {
	review, err := r.ReviewFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return review.Result, nil
}

// Review runs one document through the quality-gate loop.
func (r *Reviewer) Review(ctx context.Context, doc model.Document) (*ReviewResult, error) {
	result, err := r.controller.Run(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("review: %w", err)
	}
	return &ReviewResult{
		Source: doc.SourcePath,
		Result: result,
		Error:  nil,
	}, nil
}

// RenderResult renders the review outcome to the requested outputs.
func (r *Reviewer) RenderResult(review *ReviewResult, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.renderer.RenderJSON(review.Result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.renderer.RenderMarkdown(review.Result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	r.renderer.RenderSummary(review.Result)

	return nil
}

// LoadDraft reads a Markdown file into a Document. The title comes from the
// first top-level heading, falling back to the file name.
func LoadDraft(path string) (model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, err
	}

	body := string(data)
	title := firstHeading(body)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return model.Document{
		Title:          title,
		Body:           body,
		RevisionNumber: 0,
		SourcePath:     path,
	}, nil
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}
