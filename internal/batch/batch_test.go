package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/peirush/internal/usage"
	"github.com/pdiddy/peirush/pkg/types"
)

// mockCompleter returns a canned record per paragraph, or an error for
// paragraphs listed in failures.
type mockCompleter struct {
	failures map[string]bool // paragraph text → force error
	calls    int
}

func (m *mockCompleter) Complete(_ context.Context, _, paragraph string) (*types.Interpretation, types.Usage, error) {
	m.calls++
	if m.failures[strings.TrimSpace(paragraph)] {
		return nil, types.Usage{}, fmt.Errorf("service overloaded")
	}
	u := types.Usage{InputTokens: 10, OutputTokens: 20}
	return &types.Interpretation{
		OriginalText:           strings.TrimSpace(paragraph),
		DifficultWords:         []types.WordGloss{},
		DetailedInterpretation: []types.Segment{{Quote: "q", Explanation: "e"}},
		Usage:                  &u,
	}, u, nil
}

func TestMain(m *testing.M) {
	// Fixed clock so result filenames are predictable.
	now = func() time.Time { return time.Date(2024, 7, 1, 12, 30, 45, 0, time.UTC) }
	os.Exit(m.Run())
}

func testSetup(t *testing.T, sources map[string]string) types.BatchConfig {
	t.Helper()
	dir := t.TempDir()

	writeTestFile(t, filepath.Join(dir, "prompt.txt"), "interpret this")
	writeTestFile(t, filepath.Join(dir, "examples.txt"), "example paragraphs")

	srcDir := filepath.Join(dir, "sources")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range sources {
		writeTestFile(t, filepath.Join(srcDir, name), content)
	}

	return types.BatchConfig{
		CompletionConfig: types.CompletionConfig{Model: "test-model"},
		SourcesDir:       srcDir,
		ResultsDir:       filepath.Join(dir, "results"),
		PromptFile:       filepath.Join(dir, "prompt.txt"),
		ExamplesFile:     filepath.Join(dir, "examples.txt"),
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunProcessesAllSources(t *testing.T) {
	cfg := testSetup(t, map[string]string{
		"a_1.txt": "first paragraph",
		"b_2.txt": "second paragraph",
	})
	tracker := usage.NewTracker()

	run, err := Run(context.Background(), &mockCompleter{}, cfg, tracker, zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(run.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(run.Results))
	}
	if len(run.Errors) != 0 {
		t.Errorf("unexpected errors: %v", run.Errors)
	}

	// Sorted source order.
	if run.Results[0].Source != "a_1.txt" || run.Results[1].Source != "b_2.txt" {
		t.Errorf("processing order = %v", run.Results)
	}

	// Timestamped result filenames: <base>_<model>_<timestamp>.json.
	want := "a_1_test-model_20240701_123045.json"
	if run.Results[0].Output != want {
		t.Errorf("output name = %q, want %q", run.Results[0].Output, want)
	}

	// Each result file deserializes to a conforming record.
	for _, res := range run.Results {
		data, err := os.ReadFile(filepath.Join(cfg.ResultsDir, res.Output))
		if err != nil {
			t.Fatalf("reading result: %v", err)
		}
		var rec types.Interpretation
		if err := json.Unmarshal(data, &rec); err != nil {
			t.Fatalf("result %s is not valid JSON: %v", res.Output, err)
		}
		if rec.OriginalText == "" || rec.Usage == nil {
			t.Errorf("result %s incomplete: %+v", res.Output, rec)
		}
	}

	// Usage accumulates the per-call counts.
	total := tracker.Total()
	if total.InputTokens != 20 || total.OutputTokens != 40 {
		t.Errorf("tracker total = %+v, want input 20 output 40", total)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	cfg := testSetup(t, map[string]string{
		"a.txt": "good one",
		"b.txt": "bad one",
		"c.txt": "another good one",
	})
	mock := &mockCompleter{failures: map[string]bool{"bad one": true}}
	tracker := usage.NewTracker()

	run, err := Run(context.Background(), mock, cfg, tracker, zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if mock.calls != 3 {
		t.Errorf("completer called %d times, want 3 (one attempt per file)", mock.calls)
	}
	if len(run.Results) != 2 {
		t.Errorf("got %d results, want 2", len(run.Results))
	}
	if len(run.Errors) != 1 || !strings.Contains(run.Errors[0], "b.txt") {
		t.Errorf("errors = %v, want one mentioning b.txt", run.Errors)
	}

	// The failed file leaves no artifact.
	entries, err := os.ReadDir(cfg.ResultsDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "b_") {
			t.Errorf("failed file produced artifact %s", e.Name())
		}
	}
}

func TestRunSkipsNonTxtFiles(t *testing.T) {
	cfg := testSetup(t, map[string]string{
		"a.txt":        "paragraph",
		"notes.md":     "not a source",
		".hidden.txt~": "backup",
	})
	mock := &mockCompleter{}

	run, err := Run(context.Background(), mock, cfg, usage.NewTracker(), zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mock.calls != 1 || len(run.Results) != 1 {
		t.Errorf("calls = %d, results = %d, want 1 and 1", mock.calls, len(run.Results))
	}
}

func TestRunMissingPromptIsFatal(t *testing.T) {
	cfg := testSetup(t, map[string]string{"a.txt": "paragraph"})
	cfg.PromptFile = filepath.Join(t.TempDir(), "missing.txt")
	mock := &mockCompleter{}

	_, err := Run(context.Background(), mock, cfg, usage.NewTracker(), zap.NewNop())
	if err == nil {
		t.Fatal("expected fatal error for missing prompt file")
	}
	if mock.calls != 0 {
		t.Errorf("completer called %d times before fatal abort, want 0", mock.calls)
	}
}

func TestRunMissingExamplesIsFatal(t *testing.T) {
	cfg := testSetup(t, map[string]string{"a.txt": "paragraph"})
	cfg.ExamplesFile = filepath.Join(t.TempDir(), "missing.txt")

	if _, err := Run(context.Background(), &mockCompleter{}, cfg, usage.NewTracker(), zap.NewNop()); err == nil {
		t.Fatal("expected fatal error for missing examples file")
	}
}

func TestWriteSummary(t *testing.T) {
	tracker := usage.NewTracker()
	tracker.Record("test-model", types.Usage{InputTokens: 7, OutputTokens: 9})
	run := RunResult{
		Results: []Result{{Source: "a.txt", Output: "a_test-model_x.json"}},
		Errors:  []string{"completion failed for b.txt: boom"},
	}

	path := filepath.Join(t.TempDir(), "run-summary.yaml")
	if err := WriteSummary(path, run, tracker); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got summary
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("summary is not valid YAML: %v", err)
	}
	if len(got.Results) != 1 || len(got.Errors) != 1 {
		t.Errorf("summary round-trip = %+v", got)
	}
	if got.Total.InputTokens != 7 || got.Usage["test-model"].OutputTokens != 9 {
		t.Errorf("summary usage = total %+v, per-model %+v", got.Total, got.Usage)
	}
}
