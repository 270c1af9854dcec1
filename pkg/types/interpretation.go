// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// WordGloss explains a single difficult word or phrase from the paragraph.
type WordGloss struct {
	Word        string `json:"word" yaml:"word"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// Segment is one quoted span of the paragraph with its interpretation.
type Segment struct {
	Quote       string `json:"quote" yaml:"quote"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// Usage holds the token counts reported by the API for one completion call.
type Usage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
}

// Interpretation is the structured result for one source paragraph. It is
// parsed from the model's JSON response and persisted verbatim to the results
// directory; the compiler later renders one document section per record.
type Interpretation struct {
	// Letter identifies the paragraph (a Hebrew letter heading). Optional;
	// an absent letter renders as an empty heading.
	Letter string `json:"letter,omitempty" yaml:"letter,omitempty"`

	// OriginalText is the paragraph as given to the model.
	OriginalText string `json:"original_text" yaml:"original_text"`

	// DifficultWords glosses hard words in order of appearance. May be empty.
	DifficultWords []WordGloss `json:"difficult_words" yaml:"difficult_words"`

	// DetailedInterpretation covers the paragraph quote by quote, in order.
	DetailedInterpretation []Segment `json:"detailed_interpretation" yaml:"detailed_interpretation"`

	// Usage is attached after a successful completion call.
	Usage *Usage `json:"usage,omitempty" yaml:"usage,omitempty"`
}
