package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "mhrs",
	Short: "Book and manage MHRS appointments through a browser",
	Long: `mhrs drives the MHRS citizen portal in a Chrome tab and exposes doctor
search, booking, cancellation and the appointment list as MCP tools.

Configuration comes from the environment (MHRS_USERNAME, MHRS_PASSWORD,
BROWSER_HEADLESS, METRICS_ADDR, ...), optionally loaded from an env file.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", ".env", "file with KEY=value lines loaded into the environment if it exists",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(appointmentsCmd)
	rootCmd.AddCommand(modalCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile does not override variables that are already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
