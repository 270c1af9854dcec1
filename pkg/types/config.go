package types

import "time"

// CompletionConfig holds shared settings for components that call the
// Anthropic Messages API.
type CompletionConfig struct {
	// Model is the model identifier (e.g. "claude-3-5-sonnet-20240620").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens bounds the generated output length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout is the HTTP request timeout. Zero means no timeout; a
	// completion call then blocks until the service responds or errors.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// BatchConfig holds settings for the full-processing stage.
type BatchConfig struct {
	CompletionConfig `yaml:",inline"`

	// SourcesDir is the directory of plain-text paragraph files to process.
	SourcesDir string `json:"sources_dir" yaml:"sources_dir"`

	// ResultsDir is the directory where interpretation records are written.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// PromptFile is the static instruction text sent with every request.
	PromptFile string `json:"prompt_file" yaml:"prompt_file"`

	// ExamplesFile contains worked example paragraphs appended to the prompt.
	ExamplesFile string `json:"examples_file" yaml:"examples_file"`
}

// CompileConfig holds settings for the document compilation stage.
type CompileConfig struct {
	// ResultsDir is the directory of persisted interpretation records.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// OutputFile is the path of the compiled document.
	OutputFile string `json:"output_file" yaml:"output_file"`

	// FontName is the default font applied to the whole document.
	FontName string `json:"font_name" yaml:"font_name"`

	// FontSizePt is the default font size in points.
	FontSizePt int `json:"font_size_pt" yaml:"font_size_pt"`
}

// PipelineConfig groups both stage configurations.
type PipelineConfig struct {
	Batch   BatchConfig   `json:"batch" yaml:"batch"`
	Compile CompileConfig `json:"compile" yaml:"compile"`

	// LogFile is the persistent log recording per-call usage lines.
	LogFile string `json:"log_file" yaml:"log_file"`

	// SummaryFile is where the YAML run summary is written after processing.
	SummaryFile string `json:"summary_file" yaml:"summary_file"`
}
