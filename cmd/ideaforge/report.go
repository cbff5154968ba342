package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ideaforge/internal/report"
	"ideaforge/internal/store"
)

func reportCMD() *cobra.Command {
	var inputPath string
	var outputPath string

	var render = &cobra.Command{
		Use:   "report",
		Short: "Render a saved research state as markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}
			st, err := store.LoadState(inputPath)
			if err != nil {
				return err
			}
			if err := report.Write(outputPath, st); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", outputPath)
			return nil
		},
	}
	render.Flags().StringVar(&inputPath, "input", "", "state JSON produced by a run")
	render.Flags().StringVar(&outputPath, "output", "workflow_report.md", "report destination")

	return render
}
