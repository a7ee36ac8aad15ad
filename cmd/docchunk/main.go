package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/token"
	"github.com/dgallion1/docchunk/internal/writer"
)

func main() {
	var (
		maxTokens int
		overlap   int
		workers   int
	)

	rootCmd := &cobra.Command{
		Use:   "docchunk <input_path> <output_dir>",
		Short: "Chunk documents (PDF, DOCX, TXT, MD) for parallel LLM summarization",
		Long: "docchunk extracts text from a document (or a directory of documents),\n" +
			"detects section boundaries, and splits the text into token-budgeted,\n" +
			"overlapping chunks suitable for independent summarization.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("max-tokens") {
				cfg.MaxTokens = maxTokens
			}
			if cmd.Flags().Changed("overlap") {
				cfg.OverlapTokens = overlap
			}
			if cmd.Flags().Changed("workers") {
				cfg.WorkerCount = workers
			}
			return run(cfg, args[0], args[1])
		},
	}

	rootCmd.Flags().IntVar(&maxTokens, "max-tokens", 4000, "target max tokens per chunk")
	rootCmd.Flags().IntVar(&overlap, "overlap", 200, "token overlap between chunks")
	rootCmd.Flags().IntVar(&workers, "workers", 4, "concurrent files in directory mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, inputPath, outputDir string) error {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Exact token counting when the encoding can be loaded; the chars/4
	// approximation otherwise. The pipeline is correct either way.
	var est token.Estimator
	if tk, err := token.NewTiktoken(cfg.TiktokenEncoding); err != nil {
		log.Warn("tiktoken unavailable, using approximate token counts", "error", err)
		est = token.Approximate{}
	} else {
		est = tk
	}

	runner := pipeline.NewRunner(cfg, est, log)
	out := writer.New(cfg.MaxTokens, cfg.OverlapTokens)

	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("path not found: %s", inputPath)
	}

	var status *writer.Status
	if info.IsDir() {
		results, err := runner.RunDirectory(inputPath)
		if err != nil {
			return err
		}
		status, err = out.WriteMulti(results, inputPath, outputDir)
		if err != nil {
			return err
		}
	} else {
		if !parser.IsSupported(inputPath) {
			return fmt.Errorf("%w: %s", parser.ErrUnsupported, inputPath)
		}
		result, err := runner.RunFile(inputPath)
		if err != nil {
			if errors.Is(err, pipeline.ErrNoUsableText) {
				log.Error("file has no usable text", "file", inputPath)
			}
			return err
		}
		status, err = out.WriteSingle(result, outputDir)
		if err != nil {
			return err
		}
	}

	log.Info("output written", "dir", status.OutputDir)
	return json.NewEncoder(os.Stdout).Encode(status)
}
