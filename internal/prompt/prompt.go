// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt assembles the system instruction sent with every completion
// request: the static instruction text, worked example paragraphs, and a
// canonical example of the expected JSON record.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/peirush/pkg/types"
)

// systemTmpl combines the instruction text, the example paragraphs, and the
// canonical record into one system-level instruction. The trailing directive
// pins the model to JSON-mode output matching the example structure.
var systemTmpl = template.Must(template.New("system").Parse(`{{.Prompt}}

פסקאות לדוגמא:

{{.Examples}}

Please provide your interpretation in JSON format. Here's an example of the correct structure:

{{.Structure}}

Make sure to follow this structure in your response, using JSON mode.`))

// exampleRecord is the canonical interpretation shown to the model so it
// mirrors the exact field names and nesting of the persisted schema.
var exampleRecord = types.Interpretation{
	Letter:       "א",
	OriginalText: "התכונה של יראת שמים, מצד עצמה, לית לה מגרמה כלום, ואי אפשר לה להיות מתחשבת בין הכשרונות ומעלות הנפש של האדם.",
	DifficultWords: []types.WordGloss{
		{Word: "לית לה מגרמה כלום", Explanation: "אין לה מעצמה כלום"},
		{Word: "מתחשבת", Explanation: "נחשבת, נספרת"},
	},
	DetailedInterpretation: []types.Segment{
		{
			Quote:       "התכונה של יראת שמים, מצד עצמה, לית לה מגרמה כלום",
			Explanation: "השאיפה הדתית (\"יראת שמים\") איננה תוכן העומד בפני עצמו. הרב קוק מסביר כי יראת שמים, כשלעצמה, אינה בעלת ערך עצמאי.",
		},
		{
			Quote:       "ואי אפשר לה להיות מתחשבת בין הכשרונות ומעלות הנפש של האדם",
			Explanation: "יראת שמים איננה נספרת בין שאר כוחות הנפש. היא אינה יכולה להיחשב כאחת מהתכונות או היכולות של האדם.",
		},
	},
}

// Assemble renders the system instruction from the static prompt text and the
// worked examples. The canonical record is marshaled without HTML escaping so
// the Hebrew text reads exactly as it will in persisted results.
func Assemble(promptText, examplesText string) (string, error) {
	structure, err := marshalRecord(exampleRecord)
	if err != nil {
		return "", fmt.Errorf("marshaling example structure: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		Prompt    string
		Examples  string
		Structure string
	}{promptText, examplesText, structure}
	if err := systemTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering system instruction: %w", err)
	}
	return buf.String(), nil
}

// marshalRecord produces two-space-indented JSON with HTML escaping disabled.
func marshalRecord(rec types.Interpretation) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
