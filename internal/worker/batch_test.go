package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/umactually/internal/analysis"
	"github.com/ppiankov/umactually/internal/model"
)

// mockSubmitter fails inputs containing "fail"
type mockSubmitter struct {
	mu    sync.Mutex
	calls []string
}

func (m *mockSubmitter) Submit(ctx context.Context, input string) (*analysis.Outcome, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	if strings.Contains(input, "fail") {
		return nil, errors.New("analysis failed")
	}
	return &analysis.Outcome{
		Screen: analysis.Classify(input),
		Input:  input,
		Result: model.AnalysisResult{ConfidenceScore: len(input)},
	}, nil
}

func TestBatchProcessor_ProcessInputs(t *testing.T) {
	sub := &mockSubmitter{}
	var progressed int
	var mu sync.Mutex
	processor := NewBatchProcessor(sub, 3, WithProgress(func(*SubmitResult) {
		mu.Lock()
		progressed++
		mu.Unlock()
	}))

	inputs := []string{"claim one", "this will fail", "https://youtu.be/dQw4w9WgXcQ", "claim four"}
	results := processor.ProcessInputs(context.Background(), inputs)

	if len(results) != len(inputs) {
		t.Fatalf("Expected %d results, got %d", len(inputs), len(results))
	}
	for i, res := range results {
		if res.Index != i || res.Input != inputs[i] {
			t.Errorf("Expected results in input order, position %d holds %d %q", i, res.Index, res.Input)
		}
	}

	if results[1].GetError() == nil || results[1].Outcome != nil {
		t.Errorf("Expected failure for %q, got %+v", inputs[1], results[1])
	}
	if results[2].Outcome == nil || results[2].Outcome.Screen != analysis.ScreenVideo {
		t.Errorf("Expected video outcome, got %+v", results[2])
	}
	if progressed != len(inputs) {
		t.Errorf("Expected %d progress callbacks, got %d", len(inputs), progressed)
	}
}

// instantSubmitter succeeds immediately
type instantSubmitter struct{}

func (instantSubmitter) Submit(ctx context.Context, input string) (*analysis.Outcome, error) {
	return &analysis.Outcome{Input: input}, nil
}

func TestBatchProcessor_ProcessInputs_LargeBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	inputs := make([]string, 40)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("claim %d", i)
	}

	results := NewBatchProcessor(instantSubmitter{}, 1).ProcessInputs(ctx, inputs)
	if ctx.Err() != nil {
		t.Fatalf("Batch stalled until the deadline: %v", ctx.Err())
	}
	if len(results) != len(inputs) {
		t.Fatalf("Expected %d results, got %d", len(inputs), len(results))
	}
	for i, res := range results {
		if res.Index != i || res.Error != nil {
			t.Errorf("Result %d: expected index %d without error, got %d (%v)", i, i, res.Index, res.Error)
		}
	}
}

func TestBatchProcessor_ProcessInputs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockSubmitter{}, 2)
	if results := processor.ProcessInputs(context.Background(), nil); len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestReadInputsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.txt")
	content := "# claims to check\nThe sky is blue.\n\nThe sky is blue.\nWater boils at 100C.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	inputs, err := ReadInputsFromFile(path)
	if err != nil {
		t.Fatalf("ReadInputsFromFile failed: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("Expected 2 inputs after dedup, got %d", len(inputs))
	}
}

func TestReadInputsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadInputsFromFile("/nonexistent/inputs.txt"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestReadInputs(t *testing.T) {
	in := strings.NewReader(`
# comment
  first claim  
https://youtu.be/dQw4w9WgXcQ
first claim
	# indented comment
second claim
`)
	got, err := ReadInputs(in)
	if err != nil {
		t.Fatalf("ReadInputs failed: %v", err)
	}

	want := []string{"first claim", "https://youtu.be/dQw4w9WgXcQ", "second claim"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Input %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSubmitResult_GetError(t *testing.T) {
	err := errors.New("boom")
	if (&SubmitResult{Error: err}).GetError() != err {
		t.Error("Expected GetError to return the stored error")
	}
	if (&SubmitResult{}).GetError() != nil {
		t.Error("Expected nil error")
	}
}
