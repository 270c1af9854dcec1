package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/peirush/pkg/types"
)

func TestAssembleContainsAllSections(t *testing.T) {
	system, err := Assemble("Interpret each paragraph.", "Example paragraph text.")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	for _, want := range []string{
		"Interpret each paragraph.",
		"פסקאות לדוגמא:",
		"Example paragraph text.",
		"Please provide your interpretation in JSON format.",
		"using JSON mode.",
	} {
		if !strings.Contains(system, want) {
			t.Errorf("system instruction missing %q", want)
		}
	}

	// Instruction text must come before the examples, which come before the
	// structure example.
	pi := strings.Index(system, "Interpret each paragraph.")
	ei := strings.Index(system, "Example paragraph text.")
	si := strings.Index(system, `"original_text"`)
	if !(pi < ei && ei < si) {
		t.Errorf("sections out of order: prompt@%d examples@%d structure@%d", pi, ei, si)
	}
}

func TestAssembleStructureIsValidJSON(t *testing.T) {
	system, err := Assemble("p", "e")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	start := strings.Index(system, "{")
	end := strings.LastIndex(system, "}")
	if start < 0 || end < start {
		t.Fatalf("no JSON object found in system instruction")
	}

	var rec types.Interpretation
	if err := json.Unmarshal([]byte(system[start:end+1]), &rec); err != nil {
		t.Fatalf("embedded structure is not valid JSON: %v", err)
	}
	if rec.Letter != "א" {
		t.Errorf("example letter = %q, want א", rec.Letter)
	}
	if len(rec.DifficultWords) != 2 || len(rec.DetailedInterpretation) != 2 {
		t.Errorf("example structure incomplete: %d words, %d segments",
			len(rec.DifficultWords), len(rec.DetailedInterpretation))
	}
}

func TestMarshalRecordDoesNotEscapeHTML(t *testing.T) {
	rec := types.Interpretation{OriginalText: `a < b & "c"`}
	got, err := marshalRecord(rec)
	if err != nil {
		t.Fatalf("marshalRecord: %v", err)
	}
	// HTML escaping would replace the angle brackets and ampersand with
	// u003c/u003e/u0026 sequences.
	if strings.Contains(got, "u003c") || strings.Contains(got, "u0026") {
		t.Errorf("record was HTML-escaped: %s", got)
	}
	if !strings.Contains(got, `a < b & \"c\"`) {
		t.Errorf("record text altered: %s", got)
	}
}
