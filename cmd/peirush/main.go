// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the peirush CLI: a two-stage batch
// pipeline that interprets Hebrew source paragraphs through the Anthropic
// Messages API and compiles the persisted results into one right-to-left
// document.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/peirush/internal/batch"
	"github.com/pdiddy/peirush/internal/claude"
	"github.com/pdiddy/peirush/internal/compile"
	"github.com/pdiddy/peirush/internal/logging"
	"github.com/pdiddy/peirush/internal/secrets"
	"github.com/pdiddy/peirush/internal/usage"
	"github.com/pdiddy/peirush/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs the whole pipeline. Full processing is the default; the one
// operational flag switches to compile-only mode.
var rootCmd = &cobra.Command{
	Use:   "peirush",
	Short: "Batch interpretation of Hebrew paragraphs into a compiled document",
	Long: `peirush processes a directory of plain-text source paragraphs: each one is
sent to the Anthropic Messages API together with a fixed instruction prompt,
and the structured JSON interpretation is persisted to the results directory.
All persisted results are then compiled into a single right-to-left DOCX
document.

With --compile-only the processing stage is skipped and the document is
compiled from whatever result files already exist.`,
	RunE: runPipeline,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./peirush.yaml or ~/.config/peirush/config.yaml)")
	rootCmd.Flags().Bool("compile-only", false, "skip processing and only compile existing result files")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("peirush")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "peirush"))
		}
	}

	viper.SetDefault("model", "claude-3-5-sonnet-20240620")
	viper.SetDefault("max_tokens", 4096)
	viper.SetDefault("timeout", 5*time.Minute)
	viper.SetDefault("sources_dir", "sources")
	viper.SetDefault("results_dir", "results")
	viper.SetDefault("prompt_file", "prompt.txt")
	viper.SetDefault("examples_file", "examples.txt")
	viper.SetDefault("output_file", "compiled_interpretations.docx")
	viper.SetDefault("log_file", "api_usage.log")
	viper.SetDefault("summary_file", "run-summary.yaml")
	viper.SetDefault("font_name", "Arial")
	viper.SetDefault("font_size_pt", 12)

	viper.SetEnvPrefix("PEIRUSH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildConfig materializes the typed pipeline config from viper.
func buildConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Batch: types.BatchConfig{
			CompletionConfig: types.CompletionConfig{
				Model:     viper.GetString("model"),
				MaxTokens: viper.GetInt("max_tokens"),
				Timeout:   viper.GetDuration("timeout"),
			},
			SourcesDir:   viper.GetString("sources_dir"),
			ResultsDir:   viper.GetString("results_dir"),
			PromptFile:   viper.GetString("prompt_file"),
			ExamplesFile: viper.GetString("examples_file"),
		},
		Compile: types.CompileConfig{
			ResultsDir: viper.GetString("results_dir"),
			OutputFile: viper.GetString("output_file"),
			FontName:   viper.GetString("font_name"),
			FontSizePt: viper.GetInt("font_size_pt"),
		},
		LogFile:     viper.GetString("log_file"),
		SummaryFile: viper.GetString("summary_file"),
	}
}

// apiKey resolves the Messages API key: environment first (after godotenv
// has folded .env into it), then the .secrets/ directory.
func apiKey() (string, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}
	return secrets.APIKey(".secrets/")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	cfg := buildConfig()

	log, err := logging.New(cfg.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	compileOnly, _ := cmd.Flags().GetBool("compile-only")
	tracker := usage.NewTracker()
	var run batch.RunResult

	if compileOnly {
		log.Info("processing mode: compile only")
	} else {
		log.Info("processing mode: full processing")

		key, err := apiKey()
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or .secrets/anthropic-api-key")
		}
		cfg.Batch.APIKey = key

		client := &claude.Client{
			APIKey:     cfg.Batch.APIKey,
			Model:      cfg.Batch.Model,
			MaxTokens:  cfg.Batch.MaxTokens,
			HTTPClient: &http.Client{Timeout: cfg.Batch.Timeout},
		}

		run, err = batch.Run(cmd.Context(), client, cfg.Batch, tracker, log)
		if err != nil {
			return err
		}

		if err := batch.WriteSummary(cfg.SummaryFile, run, tracker); err != nil {
			log.Warn("writing run summary failed", zap.Error(err))
		}
	}

	sum, err := compile.Compile(cfg.Compile, log)
	if err != nil {
		return err
	}

	fmt.Println(tracker.Report())

	allErrors := append(append([]string{}, run.Errors...), sum.Errors...)
	if len(allErrors) > 0 {
		fmt.Println("\nErrors encountered during processing:")
		for _, e := range allErrors {
			fmt.Println(e)
		}
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
