// Package main implements the studyhall-api server: a flashcard study
// engine exposing session, vocabulary and statistics endpoints over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lexireef/studyhall-api/internal/importer"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var rootCmd = &cobra.Command{
	Use:          "studyhall-api",
	Short:        "Vocabulary study session API",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return app.run(cmd.Context())
	},
}

var importCmd = &cobra.Command{
	Use:   "import-vocab <file.xlsx>",
	Short: "Import vocabulary items from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer app.cleanup()

		cfg := importerConfigFromFlags(cmd, args[0])
		result, err := app.importer.ImportFile(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		app.logger.Info("vocabulary import finished",
			slog.Int("processed", result.TotalProcessed),
			slog.Int("imported", result.Imported),
			slog.Int("skipped", result.Skipped))
		for _, msg := range result.Errors {
			app.logger.Warn("import row skipped", slog.String("reason", msg))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("studyhall-api", version)
	},
}

func init() {
	importCmd.Flags().String("sheet", "Sheet1", "Sheet name to import")
	importCmd.Flags().Int("start-row", 2, "First data row (1-based)")
	importCmd.Flags().Bool("dry-run", false, "Parse and validate without writing")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

// importerConfigFromFlags builds an import config from the command flags.
func importerConfigFromFlags(cmd *cobra.Command, path string) importer.Config {
	cfg := importer.DefaultConfig(path)
	if sheet, err := cmd.Flags().GetString("sheet"); err == nil && sheet != "" {
		cfg.SheetName = sheet
	}
	if startRow, err := cmd.Flags().GetInt("start-row"); err == nil && startRow > 0 {
		cfg.StartRow = startRow
	}
	if dryRun, err := cmd.Flags().GetBool("dry-run"); err == nil {
		cfg.DryRun = dryRun
	}
	return cfg
}

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
