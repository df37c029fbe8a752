package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"transcriptor/internal/artifacts"
	"transcriptor/internal/extract"
	"transcriptor/internal/feeds"
	"transcriptor/internal/history"
	"transcriptor/internal/logging"
	"transcriptor/internal/metrics"
	"transcriptor/internal/services"
	"transcriptor/internal/transcript"
)

type batchItem struct {
	Reference  string            `json:"reference"`
	Result     transcript.Result `json:"result"`
	Transcript string            `json:"transcript_path,omitempty"`
	Metadata   string            `json:"metadata_path,omitempty"`
	SaveError  string            `json:"save_error,omitempty"`
}

type batchReport struct {
	RunID   string             `json:"run_id"`
	Summary transcript.Summary `json:"summary"`
	Items   []batchItem        `json:"items"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags
	var refFile string
	var feedSource string
	var feedLimit int
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "batch [references...]",
		Short: "Extract transcripts for several videos in sequence",
		Long: "Extract transcripts for each reference in order, pausing between items.\n" +
			"References come from arguments, --file (text or YAML), and --feed (channel or playlist feed).\n" +
			"Ids starting with '-' must follow --.",
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := compactReferences(args)
			if strings.TrimSpace(refFile) != "" {
				fromFile, err := readReferenceFile(refFile)
				if err != nil {
					return err
				}
				refs = append(refs, fromFile...)
			}
			if strings.TrimSpace(feedSource) != "" {
				fromFeed, err := loadFeedReferences(cmd.Context(), ctx, feedSource, feedLimit)
				if err != nil {
					return err
				}
				refs = append(refs, fromFeed...)
			}
			if len(refs) == 0 {
				return fmt.Errorf("no references supplied: pass arguments, --file, or --feed")
			}
			return runBatch(cmd, ctx, refs, flags, metricsFile)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&refFile, "file", "f", "", "File of references (one per line, or YAML list)")
	cmd.Flags().StringVar(&feedSource, "feed", "", "Channel id, playlist id, or feed URL to pull references from")
	cmd.Flags().IntVar(&feedLimit, "feed-limit", 15, "Maximum number of feed entries to process (0 for all)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path (overrides config)")
	return cmd
}

func loadFeedReferences(ctx context.Context, cmdCtx *commandContext, source string, limit int) ([]string, error) {
	cfg := cmdCtx.configValue()
	opts := []feeds.Option{}
	if cfg != nil {
		opts = append(opts,
			feeds.WithBaseURL(cfg.Captions.BaseURL),
			feeds.WithUserAgent(cfg.Captions.UserAgent),
			feeds.WithHTTPClient(&http.Client{
				Timeout:   cfg.CaptionsTimeout(),
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			}),
		)
	}
	entries, err := feeds.NewReader(opts...).Fetch(ctx, source, limit)
	if err != nil {
		return nil, err
	}
	return feeds.References(entries), nil
}

func runBatch(cmd *cobra.Command, cmdCtx *commandContext, refs []string, flags extractFlags, metricsFile string) error {
	base, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := flags.apply(base, true)
	if err != nil {
		return err
	}
	logger, err := cmdCtx.logger(cmd)
	if err != nil {
		return err
	}
	defer cmdCtx.startTracing(cmd, logger)()

	runID := uuid.NewString()
	ctx := services.WithRequestID(cmd.Context(), runID)
	logger = logging.WithContext(ctx, logger)

	recorder := metrics.New()
	opts := []extract.Option{extract.WithObserver(recorder)}
	if store := cmdCtx.openHistory(logger); store != nil {
		defer store.Close()
		opts = append(opts, extract.WithObserver(history.NewRecorder(store, logger)))
	}
	extractor, err := extract.NewFromConfig(cfg, logger, opts...)
	if err != nil {
		return err
	}

	batchOpts := extract.BatchOptions(cfg)
	progressOut := cmd.ErrOrStderr()
	if isTerminal(progressOut) && !flags.jsonOutput {
		batchOpts.Progress = func(current, total int) {
			fmt.Fprintf(progressOut, "\r[%d/%d] extracting %s", current, total, truncate(refs[current-1], 60))
			if current == total {
				fmt.Fprintln(progressOut)
			}
		}
	}

	logger.Info("batch started", logging.Int("references", len(refs)))
	results := extractor.ExtractMany(ctx, refs, batchOpts)
	summary := transcript.Summarize(results)

	writer := artifacts.NewWriter(cfg.Paths.OutputDir, logger)
	report := batchReport{RunID: runID, Summary: summary, Items: make([]batchItem, 0, len(results))}
	saveFailures := 0
	for i, result := range results {
		item := batchItem{Reference: refs[i], Result: result}
		if result.Success {
			paths, err := writer.Write(ctx, result)
			if err != nil {
				saveFailures++
				item.SaveError = err.Error()
				logging.WarnWithContext(logger, "transcript save failed", "artifact_write_failed",
					logging.VideoID(string(result.VideoID)),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the output directory is writable"),
					logging.String(logging.FieldImpact, "transcript kept in the batch report only"),
				)
			} else {
				item.Transcript = paths.Transcript
				item.Metadata = paths.Metadata
			}
		}
		item.Result.Transcript = ""
		report.Items = append(report.Items, item)
	}

	textfile := strings.TrimSpace(metricsFile)
	if textfile == "" {
		textfile = cfg.Metrics.TextfilePath
	}
	if textfile != "" {
		if err := recorder.WriteTextfile(textfile); err != nil {
			logging.WarnWithContext(logger, "metrics export failed", "metrics_export_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the metrics textfile directory is writable"),
				logging.String(logging.FieldImpact, "batch metrics were not exported"),
			)
		}
	}

	logger.Info("batch finished",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("from_cache", summary.FromCache),
	)

	if flags.jsonOutput {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printBatchReport(cmd.OutOrStdout(), report)
	}
	if summary.Total > 0 && summary.Succeeded == 0 {
		return errReported
	}
	if saveFailures > 0 {
		return fmt.Errorf("failed to save %d of %d transcripts", saveFailures, summary.Succeeded)
	}
	return nil
}

func printBatchReport(out io.Writer, report batchReport) {
	headers := []string{"#", "Video", "Status", "Method", "Words", "Detail"}
	rows := make([][]string, 0, len(report.Items))
	for i, item := range report.Items {
		result := item.Result
		video := string(result.VideoID)
		if video == "" {
			video = truncate(item.Reference, 24)
		}
		status := "ok"
		detail := item.Transcript
		words := strconv.Itoa(result.WordCount)
		if result.FromCache {
			status = "cached"
		}
		if !result.Success {
			status = "failed"
			detail = truncate(result.Error, 60)
			words = "-"
		} else if item.SaveError != "" {
			status = "unsaved"
			detail = truncate(item.SaveError, 60)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			video,
			status,
			valueOrDash(result.Method),
			words,
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
	fmt.Fprintf(out, "Run %s: %d processed, %d succeeded, %d failed (%d from cache)\n",
		report.RunID, report.Summary.Total, report.Summary.Succeeded, report.Summary.Failed, report.Summary.FromCache)
}

func valueOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
