// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives full-processing mode: it assembles the system
// instruction once, then walks the source paragraphs in sorted order, issuing
// one completion call per file and persisting each interpretation record.
// Per-file failures are recorded and the run continues; each source file gets
// exactly one attempt per run.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/peirush/internal/prompt"
	"github.com/pdiddy/peirush/internal/usage"
	"github.com/pdiddy/peirush/pkg/types"
)

// timestampLayout names result files down to the second so repeated runs
// never overwrite earlier results.
const timestampLayout = "20060102_150405"

// now is the clock used for result filenames. Tests override it.
var now = time.Now

// Completer abstracts the Messages API client so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, system, paragraph string) (*types.Interpretation, types.Usage, error)
}

// Result pairs one processed source file with its persisted record.
type Result struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
}

// RunResult is the explicit outcome of a processing run: which files
// produced records and every error encountered along the way, in order.
type RunResult struct {
	Results []Result `yaml:"results"`
	Errors  []string `yaml:"errors,omitempty"`
}

// Run processes every .txt file in cfg.SourcesDir. Missing prompt or
// examples files are fatal and abort before any network call; everything
// after that is recorded in the RunResult and skipped past.
func Run(ctx context.Context, completer Completer, cfg types.BatchConfig, tracker *usage.Tracker, log *zap.Logger) (RunResult, error) {
	promptText, err := os.ReadFile(cfg.PromptFile)
	if err != nil {
		return RunResult{}, fmt.Errorf("reading prompt file: %w", err)
	}
	examplesText, err := os.ReadFile(cfg.ExamplesFile)
	if err != nil {
		return RunResult{}, fmt.Errorf("reading examples file: %w", err)
	}

	system, err := prompt.Assemble(string(promptText), string(examplesText))
	if err != nil {
		return RunResult{}, err
	}
	log.Info("system instruction assembled", zap.Int("length", len(system)))

	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return RunResult{}, fmt.Errorf("creating results directory: %w", err)
	}

	entries, err := os.ReadDir(cfg.SourcesDir)
	if err != nil {
		return RunResult{}, fmt.Errorf("reading sources directory %s: %w", cfg.SourcesDir, err)
	}

	var run RunResult

	// os.ReadDir returns entries in sorted filename order, so processing
	// order is deterministic.
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		name := entry.Name()
		log.Info("processing source", zap.String("file", name))

		paragraph, err := os.ReadFile(filepath.Join(cfg.SourcesDir, name))
		if err != nil {
			run.fail(log, fmt.Sprintf("reading %s: %v", name, err))
			continue
		}

		rec, u, err := completer.Complete(ctx, system, string(paragraph))
		if err != nil {
			run.fail(log, fmt.Sprintf("completion failed for %s: %v", name, err))
			continue
		}

		tracker.Record(cfg.Model, u)
		log.Info("api call",
			zap.String("model", cfg.Model),
			zap.Int("input_tokens", u.InputTokens),
			zap.Int("output_tokens", u.OutputTokens))

		base := strings.TrimSuffix(name, filepath.Ext(name))
		outName := fmt.Sprintf("%s_%s_%s.json", base, cfg.Model, now().Format(timestampLayout))
		outPath := filepath.Join(cfg.ResultsDir, outName)

		if err := writeRecord(outPath, rec); err != nil {
			run.fail(log, fmt.Sprintf("writing result for %s: %v", name, err))
			continue
		}

		log.Info("result saved", zap.String("file", outName))
		run.Results = append(run.Results, Result{Source: name, Output: outName})
	}

	return run, nil
}

// fail records one recoverable error and logs it.
func (r *RunResult) fail(log *zap.Logger, msg string) {
	r.Errors = append(r.Errors, msg)
	log.Error(msg)
}

// writeRecord persists an interpretation record as two-space-indented UTF-8
// JSON with HTML escaping disabled, so Hebrew text is stored verbatim.
func writeRecord(path string, rec *types.Interpretation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// summary is the YAML document persisted by WriteSummary.
type summary struct {
	RunResult `yaml:",inline"`
	Usage     map[string]types.Usage `yaml:"usage"`
	Total     types.Usage            `yaml:"total"`
}

// WriteSummary persists the run outcome and accumulated usage as YAML.
func WriteSummary(path string, run RunResult, tracker *usage.Tracker) error {
	data, err := yaml.Marshal(summary{
		RunResult: run,
		Usage:     tracker.PerModel(),
		Total:     tracker.Total(),
	})
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
