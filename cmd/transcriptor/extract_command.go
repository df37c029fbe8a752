package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"transcriptor/internal/artifacts"
	"transcriptor/internal/config"
	"transcriptor/internal/extract"
	"transcriptor/internal/history"
	"transcriptor/internal/language"
	"transcriptor/internal/logging"
	"transcriptor/internal/transcript"
)

const ruleWidth = 60

// extractFlags are shared by the root and batch commands.
type extractFlags struct {
	languages  []string
	noFallback bool
	delay      float64
	outputDir  string
	jsonOutput bool
	copy       bool
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.languages, "lang", "l", nil, "Preferred transcript language (repeatable, in order)")
	cmd.Flags().BoolVar(&f.noFallback, "no-fallback", false, "Do not fall back to yt-dlp when caption tracks fail")
	cmd.Flags().Float64Var(&f.delay, "delay", -1, "Seconds to wait before each extraction (overrides config)")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for transcript and metadata files")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the result envelope as JSON")
}

// apply overlays command-line overrides onto a copy of cfg.
func (f extractFlags) apply(cfg *config.Config, batch bool) (*config.Config, error) {
	out := *cfg
	out.Extraction.Languages = append([]string(nil), cfg.Extraction.Languages...)
	if len(f.languages) > 0 {
		langs := language.Canonicalize(f.languages)
		if len(langs) == 0 {
			return nil, fmt.Errorf("--lang: no valid language codes in %q", strings.Join(f.languages, ", "))
		}
		out.Extraction.Languages = langs
	}
	if f.noFallback {
		out.Extraction.AllowFallback = false
	}
	if f.delay >= 0 {
		if batch {
			out.Extraction.BatchDelaySeconds = f.delay
		} else {
			out.Extraction.DelaySeconds = f.delay
		}
	}
	if dir := strings.TrimSpace(f.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return nil, fmt.Errorf("--output-dir: %w", err)
		}
		out.Paths.OutputDir = expanded
	}
	return &out, nil
}

func runExtract(cmd *cobra.Command, ctx *commandContext, reference string, flags extractFlags) error {
	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := flags.apply(base, false)
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	defer ctx.startTracing(cmd, logger)()

	var observers []extract.Option
	if store := ctx.openHistory(logger); store != nil {
		defer store.Close()
		observers = append(observers, extract.WithObserver(history.NewRecorder(store, logger)))
	}
	extractor, err := extract.NewFromConfig(cfg, logger, observers...)
	if err != nil {
		return err
	}

	result := extractor.Extract(cmd.Context(), reference, extract.ExtractOptions(cfg))
	out := cmd.OutOrStdout()

	var paths artifacts.Paths
	if result.Success {
		paths, err = artifacts.NewWriter(cfg.Paths.OutputDir, logger).Write(cmd.Context(), result)
		if err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
	}

	if flags.jsonOutput {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else {
		printResult(out, result, paths)
	}
	if !result.Success {
		return errReported
	}

	if flags.copy {
		if err := clipboard.WriteAll(result.Transcript); err != nil {
			logging.WarnWithContext(logger, "clipboard copy failed", "clipboard_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "install xclip, xsel, or wl-clipboard"),
				logging.String(logging.FieldImpact, "transcript was saved but not copied"),
			)
		} else if !flags.jsonOutput {
			fmt.Fprintln(out, "Transcript copied to clipboard")
		}
	}
	return nil
}

func printResult(out io.Writer, result transcript.Result, paths artifacts.Paths) {
	if !result.Success {
		fmt.Fprintln(out, "Failed to extract transcript")
		fmt.Fprintf(out, "Error: %s\n", result.Error)
		if result.ErrorKind != "" {
			fmt.Fprintf(out, "Hint: %s\n", result.ErrorKind.Hint())
		}
		return
	}
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(out, "Video ID: %s\n", result.VideoID)
	if result.Title != "" {
		fmt.Fprintf(out, "Title: %s\n", result.Title)
	}
	fmt.Fprintf(out, "Method: %s\n", result.Method)
	if result.FromCache {
		fmt.Fprintln(out, "Source: cache")
	}
	fmt.Fprintf(out, "Characters: %d\n", result.CharCount)
	fmt.Fprintf(out, "Words: %d\n", result.WordCount)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, result.Transcript)
	fmt.Fprintln(out, rule)
	if paths.Transcript != "" {
		fmt.Fprintf(out, "Transcript saved to: %s\n", paths.Transcript)
	}
	if paths.Metadata != "" {
		fmt.Fprintf(out, "Metadata saved to: %s\n", paths.Metadata)
	}
}
