package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dawitkb/medwarehouse/internal/config"
	"github.com/dawitkb/medwarehouse/internal/ingest"
	"github.com/dawitkb/medwarehouse/internal/pipeline"
	"github.com/dawitkb/medwarehouse/internal/report"
	"github.com/dawitkb/medwarehouse/internal/server"
	"github.com/dawitkb/medwarehouse/internal/warehouse"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "medwarehouse",
	Short:   "Channel message warehouse",
	Long:    "medwarehouse loads scraped channel messages and transforms them into a star-schema warehouse with dimensions, facts, and analytic marts.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Optional .env for MEDWAREHOUSE_* overrides.
		godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("medwarehouse", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/medwarehouse/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the date range and classification keywords.")
		return nil
	},
}

// --- load command ---

var loadCmd = &cobra.Command{
	Use:   "load [file or directory]...",
	Short: "Load raw message batch files into the warehouse",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		loader := ingest.NewLoader(db)
		result, err := loader.LoadPaths(args)
		if err != nil {
			return err
		}

		fmt.Println("\nLoad complete:")
		fmt.Printf("  Files read: %d (%d skipped)\n", result.FilesRead, result.FilesSkipped)
		fmt.Printf("  Messages found: %d\n", result.TotalFound)
		fmt.Printf("  New messages: %d\n", result.NewMessages)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)
		fmt.Printf("  Records skipped: %d\n", result.RecordsSkipped)
		return nil
	},
}

// --- build command ---

var (
	dryRun bool
	asOf   string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the transform pipeline: staging -> dimensions -> facts -> marts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		buildTime := time.Now().UTC()
		if asOf != "" {
			buildTime, err = warehouse.ParseMessageDate(asOf)
			if err != nil {
				return fmt.Errorf("invalid --as-of value: %w", err)
			}
		}

		pipe := pipeline.New(cfg, db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun()
		} else {
			result = pipe.Run(buildTime)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/6: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if result.Failed() {
			return fmt.Errorf("build failed")
		}
		if !dryRun {
			fmt.Println("\nBuild complete! Run 'medwarehouse serve' to query the warehouse.")
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	buildCmd.Flags().StringVar(&asOf, "as-of", "", "Anchor build-time-relative fields to this time (default: now)")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show warehouse status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Landing:")
		fmt.Printf("  Raw messages: %d\n", stats.RawMessages)
		fmt.Println("\nStaging:")
		fmt.Printf("  Staged messages: %d\n", stats.StagedMessages)
		fmt.Printf("  Needs review: %d\n", stats.NeedsReview)
		fmt.Println("\nStar schema:")
		fmt.Printf("  Date dimension: %d\n", stats.Dates)
		fmt.Printf("  Channel dimension: %d\n", stats.Channels)
		fmt.Printf("  Message facts: %d\n", stats.Facts)
		fmt.Println("\nMarts:")
		fmt.Printf("  Products: %d\n", stats.Products)
		fmt.Printf("  Channel rollups: %d\n", stats.PerformanceRows)
		fmt.Println("\nBuilds:")
		fmt.Printf("  Total: %d\n", stats.BuildRuns)
		if stats.LastBuild != nil {
			fmt.Printf("  Last successful: %s\n", *stats.LastBuild)
		}
		return nil
	},
}

// --- report command ---

var reportDir string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a markdown and HTML summary of the built warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		gen := report.NewGenerator(db)
		result, err := gen.Run(reportDir)
		if err != nil {
			return err
		}

		fmt.Printf("Report written:\n  %s\n  %s\n", result.MarkdownPath, result.HTMLPath)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDir, "dir", "reports", "Directory to write report files")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analytical API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default: config server.port)")
}

func openDB() (*warehouse.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "medwarehouse.db")
	return warehouse.Open(dbPath)
}
