package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"ideaforge/config"
	"ideaforge/internal/agent/core"
	"ideaforge/internal/agent/telemetry"
	"ideaforge/internal/report"
	"ideaforge/internal/store"
)

func runCMD() *cobra.Command {
	var cfgPath string
	var industry string
	var region string
	var marketType string
	var outputDir string
	var reportPath string

	var run = &cobra.Command{
		Use:   "run",
		Short: "Run the research pipeline for one industry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if outputDir != "" {
				cfg.Storage.File.OutputDir = outputDir
			}
			logger := log.New(log.Writer(), "[IDEAFORGE] ", log.LstdFlags)

			tel := telemetry.NewTelemetry(cfg.Telemetry)
			defer tel.Shutdown()

			storage, err := store.New(cfg.Storage.File)
			if err != nil {
				return fmt.Errorf("failed to create storage: %w", err)
			}

			orchestrator, err := core.NewOrchestrator(cfg, logger, tel, storage)
			if err != nil {
				return err
			}

			input := core.UserInput{
				CountryRegion:    region,
				IndustryMarket:   industry,
				TargetMarketType: core.TargetMarketType(marketType),
			}
			st, err := orchestrator.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			path, err := storage.SaveIdeas(st)
			if err != nil {
				return err
			}
			logger.Printf("Results: %s", path)

			if reportPath != "" {
				if err := report.Write(reportPath, st); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				logger.Printf("Report: %s", reportPath)
			}
			return nil
		},
	}
	run.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches ./config)")
	run.Flags().StringVar(&industry, "industry", "E-commerce", "industry or market to research")
	run.Flags().StringVar(&region, "region", "United States", "country or region")
	run.Flags().StringVar(&marketType, "market-type", "B2B", "B2B, B2C or B2B2C")
	run.Flags().StringVar(&outputDir, "output", "", "override the results directory")
	run.Flags().StringVar(&reportPath, "report", "", "also write a markdown report to this path")

	return run
}
