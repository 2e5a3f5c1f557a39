// Package cmd defines the CLI commands for the seo-api executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seo-api",
		Short: "SEO metadata and enrichment API",
		Long: `seo-api serves the content-structure metadata the marketing team
tracks (pages, keywords, competitors) and enriches it with search-volume
and SERP ranking data fetched from the metrics provider.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
