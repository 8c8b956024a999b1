package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pbaille/journal/internal/config"
	"github.com/pbaille/journal/internal/logger"
	"github.com/pbaille/journal/internal/recorder"
	"github.com/pbaille/journal/internal/store"
)

var (
	cfg      *config.Config
	dataFile string
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Learning journal: record reflections and serve them to the web front-end",
		Long: `journal keeps learning reflections in a single JSON file.

Run without a subcommand for the interactive menu, or use "journal serve"
to expose the same file over HTTP.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := recorder.New(getStore(cliLogger()), cmd.InOrStdin(), cmd.OutOrStdout())
			return rec.Run()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataFile, "file", "", "reflections file (default $JOURNAL_DATA_FILE or reflections.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(rebuildCmd())
	rootCmd.AddCommand(searchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("file") {
		c.DataFile = dataFile
	}
	if cmd.Flags().Changed("log-level") {
		c.LogLevel = logLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

func cliLogger() zerolog.Logger {
	return logger.NewConsole("journal", os.Stderr, cfg.LogLevel)
}

func getStore(log zerolog.Logger) *store.JSONStore {
	return store.New(cfg.DataFile,
		store.WithIndent(cfg.Indent),
		store.WithLogger(log),
	)
}

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Record one reflection interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := recorder.New(getStore(cliLogger()), cmd.InOrStdin(), cmd.OutOrStdout())
			if !rec.Add() {
				return fmt.Errorf("reflection not saved")
			}
			return nil
		},
	}
}
