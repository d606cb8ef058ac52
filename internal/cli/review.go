package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/draftgate/internal/model"
	"github.com/ppiankov/draftgate/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON       string
	outMD         string
	timeout       time.Duration
	maxIterations int
	passThreshold float64
	minWords      int
	knowledgePath string
	checkLinks    bool
	noCache       bool
	noFooter      bool
	llmProvider   string
	llmModel      string
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <draft.md>",
	Short: "Review a single Markdown draft through the quality gate",
	Long: `Review runs one draft through the evaluate-revise loop:
- Count prose words against the minimum length floor
- Check required section headings
- Extract factual claims and verify them against the knowledge base
- Score the draft against the SEO / E-E-A-T rubric
- Revise listed defects and re-evaluate, up to the iteration budget

Example:
  draftgate review drafts/laksa-guide.md
  draftgate review drafts/laksa-guide.md --json report.json --md report.md
  draftgate review drafts/laksa-guide.md --knowledge kb.yaml --llm-provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	// Output flags
	reviewCmd.Flags().StringVar(&outJSON, "json", "review.json", "output JSON path")
	reviewCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Gate flags
	reviewCmd.Flags().IntVar(&maxIterations, "max-iterations", 3, "revision budget before giving up")
	reviewCmd.Flags().Float64Var(&passThreshold, "pass-threshold", 9.0, "minimum overall score (0-10) to pass")
	reviewCmd.Flags().IntVar(&minWords, "min-words", 1500, "minimum prose word count")

	// Knowledge flags
	reviewCmd.Flags().StringVar(&knowledgePath, "knowledge", "", "YAML knowledge base for claim verification (optional)")
	reviewCmd.Flags().BoolVar(&checkLinks, "check-links", false, "verify knowledge-source URLs are reachable")

	// Misc flags
	reviewCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall review timeout")
	reviewCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable verification caching")
	reviewCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	reviewCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	reviewCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runReview(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Reviewing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Budget: %d iterations, pass at %.1f\n", maxIterations, passThreshold)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	reviewer, err := pipeline.NewReviewer(cfg)
	if err != nil {
		return fmt.Errorf("initialize reviewer: %w", err)
	}

	result, err := reviewer.ReviewFile(ctx, path)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Outcome: %s after %d revisions\n",
			result.Result.TerminalReason, result.Result.IterationsUsed)
		fmt.Fprintln(os.Stderr)
	}

	if err := reviewer.RenderResult(result, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if result.Result.TerminalReason == model.ReasonError {
		return fmt.Errorf("review ended in error: %s", result.Result.Err)
	}

	return nil
}

// buildConfig assembles configuration from defaults, gate flags, and LLM
// environment variables.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Gate.MaxIterations = maxIterations
	cfg.Gate.PassThreshold = passThreshold
	cfg.Gate.MinWordCount = minWords
	cfg.Knowledge.Path = knowledgePath
	cfg.Knowledge.CheckLinks = checkLinks
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	// Get API key from environment
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}
