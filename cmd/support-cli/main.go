// Package main provides the support engine CLI for FAQ administration
// and offline pipeline runs.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/convodesk/support-engine/internal/faq"
	"github.com/convodesk/support-engine/internal/observability"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "support-cli",
	Short: "Support engine CLI - manage the FAQ knowledge base and test matching",
	Long: `The support CLI manages the FAQ knowledge base backing the support
chatbot: list, add, and bulk-import records, and run a question through
the guardrail and matching pipeline locally without any provider calls.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "/tmp/support-engine.db", "sqlite database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(faqCmd)
	rootCmd.AddCommand(askCmd)
}

// openStore opens the sqlite-backed FAQ store for CLI commands.
func openStore() (*faq.Store, func(), error) {
	backend, err := faq.NewSQLBackend("sqlite3", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return faq.NewStore(backend, cliLogger()), func() { backend.Close() }, nil
}

func cliLogger() zerolog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      os.Stderr,
		ServiceName: "support-cli",
	})
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
