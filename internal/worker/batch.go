package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/umactually/internal/analysis"
)

// Submitter runs one analysis
type Submitter interface {
	Submit(ctx context.Context, input string) (*analysis.Outcome, error)
}

// SubmitJob analyzes one batch input
type SubmitJob struct {
	Index     int
	Input     string
	Submitter Submitter
	done      func(*SubmitResult)
}

// Execute runs the submission
func (j *SubmitJob) Execute(ctx context.Context) Result {
	start := time.Now()
	outcome, err := j.Submitter.Submit(ctx, j.Input)
	res := &SubmitResult{
		Index:    j.Index,
		Input:    j.Input,
		Outcome:  outcome,
		Error:    err,
		Duration: time.Since(start),
	}
	if j.done != nil {
		j.done(res)
	}
	return res
}

// SubmitResult is the outcome of one batch input
type SubmitResult struct {
	Index    int
	Input    string
	Outcome  *analysis.Outcome
	Error    error
	Duration time.Duration
}

// GetError returns the submission error
func (r *SubmitResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many inputs concurrently
type BatchProcessor struct {
	submitter   Submitter
	concurrency int
	progress    func(*SubmitResult)
}

// BatchOption configures a BatchProcessor
type BatchOption func(*BatchProcessor)

// WithProgress calls fn as each submission finishes. fn may run on any worker.
func WithProgress(fn func(*SubmitResult)) BatchOption {
	return func(b *BatchProcessor) { b.progress = fn }
}

// NewBatchProcessor creates a batch processor with concurrency workers
func NewBatchProcessor(submitter Submitter, concurrency int, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		submitter:   submitter,
		concurrency: concurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ProcessInputs analyzes inputs and returns results in input order
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []string) []*SubmitResult {
	if len(inputs) == 0 {
		return []*SubmitResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, input := range inputs {
		job := &SubmitJob{
			Index:     i,
			Input:     input,
			Submitter: b.submitter,
			done:      b.progress,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	out := make([]*SubmitResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.(*SubmitResult))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ReadInputsFromFile reads one input per line from path
func ReadInputsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadInputs(file)
}

// ReadInputs reads one input per line, skipping blank lines and # comments
// and dropping duplicates
func ReadInputs(r io.Reader) ([]string, error) {
	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return inputs, nil
}
