package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/factory-flow/factory-flow/sim"
)

var (
	// CLI flags for the warehouse simulation
	capacityMultiplier int           // Warehouse capacity = multiplier * 50
	hours              int           // Simulated hours (ticks) to run
	tick               time.Duration // Wall time of one simulated hour
	pollInterval       time.Duration // Dispatcher pause between fill checks
	threshold          float64       // High-water fill ratio that sends the trucks
	overflowPolicy     string        // fail, drop or block
	catalogPath        string        // Optional YAML seed catalog
	resultsPath        string        // Optional JSON results file
	logLevel           string        // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "factory-flow",
	Short: "Concurrent warehouse simulation: factories fill it, trucks drain it",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the warehouse simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !cmd.Flags().Changed("hours") {
			hours, err = promptHours(os.Stdin, cmd.OutOrStdout())
			if err != nil {
				logrus.Fatalf("Invalid simulation duration: %v", err)
			}
		}

		catalog := sim.DefaultCatalog()
		if catalogPath != "" {
			catalog, err = sim.LoadCatalog(catalogPath)
			if err != nil {
				logrus.Fatalf("Failed to load catalog %s: %v", catalogPath, err)
			}
		}

		s, err := sim.NewSimulation(buildConfig(), catalog)
		if err != nil {
			logrus.Fatalf("Failed to set up simulation: %v", err)
		}

		// Ctrl-C ends the run early; it is reported like a normal deadline.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		report, runErr := s.Run(ctx)
		report.Print(cmd.OutOrStdout())
		if resultsPath != "" {
			if err := report.SaveJSON(resultsPath); err != nil {
				logrus.Errorf("Failed to save results: %v", err)
			}
		}
		if runErr != nil {
			logrus.Fatalf("Simulation failed: %v", runErr)
		}
	},
}

// buildConfig assembles the run configuration from CLI flags.
func buildConfig() sim.Config {
	return sim.Config{
		CapacityMultiplier: capacityMultiplier,
		Hours:              hours,
		Tick:               tick,
		PollInterval:       pollInterval,
		Threshold:          threshold,
		OverflowPolicy:     sim.OverflowPolicy(overflowPolicy),
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultConfig()

	runCmd.Flags().IntVar(&capacityMultiplier, "multiplier", defaults.CapacityMultiplier, "Warehouse capacity multiplier (capacity = multiplier * 50)")
	runCmd.Flags().IntVar(&hours, "hours", defaults.Hours, "Simulated hours to run; prompted on stdin when omitted")
	runCmd.Flags().DurationVar(&tick, "tick", defaults.Tick, "Wall time of one simulated hour")
	runCmd.Flags().DurationVar(&pollInterval, "poll-interval", defaults.PollInterval, "Dispatcher pause between fill checks (0 = spin)")
	runCmd.Flags().Float64Var(&threshold, "threshold", defaults.Threshold, "Fill ratio that sends the trucks")
	runCmd.Flags().StringVar(&overflowPolicy, "overflow", string(defaults.OverflowPolicy), "Full warehouse policy (fail, drop, block)")
	runCmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML catalog of products, factories and trucks (default: built-in)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "Write the final report as JSON to this file")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
