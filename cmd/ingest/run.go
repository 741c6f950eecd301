package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"ai-resume-analyst/internal/pipeline"
	"ai-resume-analyst/pkg/log"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest every matching file in the source directory once",
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	runner, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("ingestion aborted: %w", err)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(report.Failed), report.Found)
	}
	return nil
}

func printReport(cmd *cobra.Command, report *pipeline.Report) {
	cmd.Printf("\nIngested %d/%d resumes, %d chunks\n", report.Succeeded, report.Found, report.Chunks)
	for _, f := range report.Failed {
		cmd.Printf("  failed: %s: %v\n", f.Path, f.Err)
	}
}
