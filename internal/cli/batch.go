package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/draftgate/internal/pipeline"
	"github.com/ppiankov/draftgate/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <drafts.txt>",
	Short: "Review multiple drafts concurrently",
	Long: `Batch reads draft paths from a manifest file (one per line, # for
comments) and runs each through the quality gate concurrently. Every draft
gets its own JSON and Markdown report in the output directory.

Example:
  draftgate batch drafts.txt --output-dir reports/
  draftgate batch drafts.txt --concurrency 4 --knowledge kb.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of concurrent reviews")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "reports", "directory for per-draft reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 60*time.Minute, "overall batch timeout")

	// Gate flags
	batchCmd.Flags().IntVar(&maxIterations, "max-iterations", 3, "revision budget before giving up")
	batchCmd.Flags().Float64Var(&passThreshold, "pass-threshold", 9.0, "minimum overall score (0-10) to pass")
	batchCmd.Flags().IntVar(&minWords, "min-words", 1500, "minimum prose word count")

	// Knowledge flags
	batchCmd.Flags().StringVar(&knowledgePath, "knowledge", "", "YAML knowledge base for claim verification (optional)")
	batchCmd.Flags().BoolVar(&checkLinks, "check-links", false, "verify knowledge-source URLs are reachable")

	// Misc flags
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable verification caching")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Draftgate Batch Review\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Manifest:     %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = concurrency

	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	reviewer, err := pipeline.NewReviewer(cfg)
	if err != nil {
		return fmt.Errorf("initialize reviewer: %w", err)
	}

	processor := worker.NewBatchProcessor(reviewer, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Reading draft paths from manifest...\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d drafts\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Reviewing drafts with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	passCount := 0
	failCount := 0
	errorCount := 0

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	for _, result := range results {
		if result.Error != nil {
			errorCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		slug := sanitizeFilename(result.Path)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Result, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Result, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		switch {
		case result.Result.FinalReport.Passed:
			passCount++
			fmt.Fprintf(os.Stderr, "✓ %s (score: %.1f/10, revisions: %d)\n",
				result.Path, result.Result.FinalReport.OverallScore, result.Result.IterationsUsed)
		default:
			failCount++
			fmt.Fprintf(os.Stderr, "✗ %s (%s, best score: %.1f/10)\n",
				result.Path, result.Result.TerminalReason, result.Result.FinalReport.OverallScore)
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d drafts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Passed:    %d\n", passCount)
	fmt.Fprintf(os.Stderr, "  Failed:    %d\n", failCount)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", errorCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename turns a draft path into a safe report filename
func sanitizeFilename(s string) string {
	s = filepath.Base(s)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
