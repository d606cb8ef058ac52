package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/draftgate/internal/model"
)

// Reviewer defines the interface for reviewing one draft file
type Reviewer interface {
	ReviewPath(ctx context.Context, path string) (*model.LoopResult, error)
}

// ReviewJob represents a single draft review job
type ReviewJob struct {
	Path     string
	Reviewer Reviewer
}

// Execute runs the draft through the quality gate
func (j *ReviewJob) Execute(ctx context.Context) Result {
	result, err := j.Reviewer.ReviewPath(ctx, j.Path)
	return &ReviewResult{
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// ReviewResult represents the outcome of a review job
type ReviewResult struct {
	Path   string
	Result *model.LoopResult
	Error  error
}

// GetError returns the error from the review result
func (r *ReviewResult) GetError() error {
	return r.Error
}

// BatchProcessor reviews multiple drafts concurrently
type BatchProcessor struct {
	reviewer    Reviewer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(reviewer Reviewer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		reviewer:    reviewer,
		concurrency: concurrency,
	}
}

// ProcessPaths reviews multiple draft files concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*ReviewResult {
	if len(paths) == 0 {
		return []*ReviewResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ReviewJob{
			Path:     path,
			Reviewer: b.reviewer,
		})
	}

	results := pool.Wait()

	reviewResults := make([]*ReviewResult, len(results))
	for i, result := range results {
		reviewResults[i] = result.(*ReviewResult)
	}

	return reviewResults
}

// ProcessFile reads draft paths from a manifest file and reviews them
func (b *BatchProcessor) ProcessFile(ctx context.Context, manifestPath string) ([]*ReviewResult, error) {
	paths, err := ReadPathsFromFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads draft paths from a file (one per line)
func ReadPathsFromFile(manifestPath string) ([]string, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
