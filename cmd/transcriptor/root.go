package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// errMissingReference is returned after the help text when no reference is given.
var errMissingReference = errors.New("missing video reference")

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var flags extractFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "transcriptor [reference]",
		Short: "Extract video transcripts",
		Long: "Extract the transcript of a video given a watch URL, short link, embed URL, or 11-character id.\n" +
			"Caption tracks are tried first; yt-dlp subtitles are used as a fallback.\n" +
			"Ids starting with '-' must follow --, as in: transcriptor -- -abcdefghij",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if err := cmd.Help(); err != nil {
					return err
				}
				return errMissingReference
			}
			return runExtract(cmd, ctx, args[0], flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	flags.register(rootCmd)
	rootCmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy the transcript to the clipboard")

	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
