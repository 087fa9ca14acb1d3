package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for urlgrabby.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urlgrabby",
		Short: "Same-domain web crawler that exports page titles and headings",
		Long: `urlgrabby crawls a website starting from a seed URL, staying on the
seed's host, and records each page's URL, title, and main heading.

Results are exported to CSV by default, with JSON and Markdown also
available. Finished crawls are saved to a local history database and can
be listed or re-exported later without crawling again.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
