package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"transcriptor/internal/history"
)

type historyEntryJSON struct {
	ID        int64                   `json:"id"`
	RunID     string                  `json:"run_id,omitempty"`
	Reference string                  `json:"reference"`
	VideoID   string                  `json:"video_id,omitempty"`
	Success   bool                    `json:"success"`
	Method    string                  `json:"method,omitempty"`
	FromCache bool                    `json:"from_cache"`
	WordCount int                     `json:"word_count"`
	ErrorKind string                  `json:"error_kind,omitempty"`
	Error     string                  `json:"error,omitempty"`
	Attempts  []history.AttemptRecord `json:"attempts,omitempty"`
	ElapsedMS int64                   `json:"elapsed_ms"`
	CreatedAt time.Time               `json:"created_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded extraction attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				out := make([]historyEntryJSON, 0, len(entries))
				for _, entry := range entries {
					out = append(out, historyEntryJSON{
						ID:        entry.ID,
						RunID:     entry.RunID,
						Reference: entry.Reference,
						VideoID:   entry.VideoID,
						Success:   entry.Success,
						Method:    entry.Method,
						FromCache: entry.FromCache,
						WordCount: entry.WordCount,
						ErrorKind: string(entry.ErrorKind),
						Error:     entry.Error,
						Attempts:  entry.Attempts,
						ElapsedMS: entry.Elapsed.Milliseconds(),
						CreatedAt: entry.CreatedAt,
					})
				}
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, "No extractions recorded yet")
				return nil
			}
			now := time.Now()
			headers := []string{"ID", "When", "Video", "Status", "Method", "Words", "Attempts", "Detail"}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				status := "ok"
				detail := ""
				if entry.FromCache {
					status = "cached"
				}
				if !entry.Success {
					status = "failed"
					detail = truncate(entry.Error, 50)
				}
				video := entry.VideoID
				if video == "" {
					video = truncate(entry.Reference, 24)
				}
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					formatAge(entry.CreatedAt, now),
					video,
					status,
					valueOrDash(entry.Method),
					strconv.Itoa(entry.WordCount),
					strconv.Itoa(len(entry.Attempts)),
					detail,
				})
			}
			fmt.Fprintln(w, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}))

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%d recorded: %d succeeded, %d failed\n", stats.Total, stats.Succeeded, stats.Failed)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Number of entries to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded extraction attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", removed)
			return nil
		},
	}
}
