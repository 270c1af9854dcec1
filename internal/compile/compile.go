// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compile assembles persisted interpretation records into one
// right-to-left document. Records are visited in lexicographic filename
// order, so compilation over an unchanged results directory is deterministic.
package compile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/peirush/internal/docx"
	"github.com/pdiddy/peirush/pkg/types"
)

// requiredKeys must be present in every record the compiler renders; letter
// and usage are optional. A file missing one is skipped, not fatal.
var requiredKeys = []string{"original_text", "difficult_words", "detailed_interpretation"}

// Summary reports the outcome of one compilation pass.
type Summary struct {
	Compiled int
	Skipped  int
	Errors   []string
}

// Compile reads every .json file in cfg.ResultsDir and writes the bound
// document to cfg.OutputFile. Malformed or schema-incomplete records are
// logged and skipped; an unreadable results directory or unwritable output
// path is fatal.
func Compile(cfg types.CompileConfig, log *zap.Logger) (Summary, error) {
	entries, err := os.ReadDir(cfg.ResultsDir)
	if err != nil {
		return Summary{}, fmt.Errorf("reading results directory %s: %w", cfg.ResultsDir, err)
	}

	doc := docx.New()
	doc.SwapPageDimensions()
	doc.SetDefaultFont(cfg.FontName, cfg.FontSizePt)

	var sum Summary

	// os.ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		rec, err := readRecord(filepath.Join(cfg.ResultsDir, entry.Name()))
		if err != nil {
			msg := fmt.Sprintf("skipping %s: %v", entry.Name(), err)
			sum.Errors = append(sum.Errors, msg)
			sum.Skipped++
			log.Error(msg)
			continue
		}

		appendRecord(doc, rec)
		sum.Compiled++
		log.Info("compiled record", zap.String("file", entry.Name()))
	}

	if err := doc.SaveAs(cfg.OutputFile); err != nil {
		return sum, fmt.Errorf("saving document: %w", err)
	}
	log.Info("document compiled",
		zap.String("output", cfg.OutputFile),
		zap.Int("records", sum.Compiled),
		zap.Int("skipped", sum.Skipped))
	return sum, nil
}

// readRecord loads one result file and verifies the required keys are
// present before decoding into the record type.
func readRecord(path string) (*types.Interpretation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("missing required key %q", key)
		}
	}

	var rec types.Interpretation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("malformed record: %w", err)
	}
	return &rec, nil
}

// appendRecord renders one record as four sections, each followed by an
// empty spacer paragraph. Every content paragraph is right-to-left.
func appendRecord(doc *docx.Document, rec *types.Interpretation) {
	// Letter heading, centered and bold. An absent letter still produces
	// the (empty) heading paragraph.
	heading := doc.AddParagraph().RTL().Align(docx.AlignCenter)
	heading.AddRun(rec.Letter).Bold()
	doc.AddParagraph()

	// Original paragraph text.
	doc.AddParagraph().RTL().Align(docx.AlignRight).AddRun(rec.OriginalText)
	doc.AddParagraph()

	// Difficult-word glossary, omitted entirely when empty.
	if len(rec.DifficultWords) > 0 {
		doc.AddParagraph().RTL().Align(docx.AlignRight).AddRun(glossaryLine(rec.DifficultWords))
		doc.AddParagraph()
	}

	// Detailed interpretation: bold quote, then plain explanation, per segment.
	para := doc.AddParagraph().RTL().Align(docx.AlignRight)
	for _, seg := range rec.DetailedInterpretation {
		para.AddRun(seg.Quote).Bold()
		para.AddRun(fmt.Sprintf(" - %s ", seg.Explanation))
	}
	doc.AddParagraph()
}

// glossaryLine joins word–explanation pairs with semicolons.
func glossaryLine(words []types.WordGloss) string {
	pairs := make([]string, len(words))
	for i, w := range words {
		pairs[i] = fmt.Sprintf("%s – %s", w.Word, w.Explanation)
	}
	return strings.Join(pairs, "; ")
}
