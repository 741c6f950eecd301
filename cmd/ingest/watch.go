package main

import (
	"os/signal"
	"syscall"

	"ai-resume-analyst/internal/pipeline"
	"ai-resume-analyst/pkg/log"

	"github.com/spf13/cobra"
)

var skipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest the source directory, then re-ingest files as they change",
	Long: `Runs the same ingestion as "run", then watches the source directory and
every subdirectory below it, including ones created later. Files matching
ingestion.patterns are re-ingested shortly after they are created or written.`,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&skipInitial, "skip-initial", false, "do not ingest existing files before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	runner, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !skipInitial {
		report, err := runner.Run(ctx)
		if report != nil {
			printReport(cmd, report)
		}
		if err != nil {
			return err
		}
	}
	cmd.Println("Watching for changes, press Ctrl+C to stop.")
	return pipeline.NewWatcher(runner).Watch(ctx)
}
