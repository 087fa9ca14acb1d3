package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/urlgrabby/urlgrabby/internal/config"
	"github.com/urlgrabby/urlgrabby/internal/database"
	"github.com/urlgrabby/urlgrabby/internal/report"
)

// NewHistoryCmd creates the history command.
// This command lists and re-exports crawls stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and re-export past crawls",
		Long: `History manages crawl sessions stored in the local database.

Every crawl is saved automatically (unless run with --no-save), so past
results can be listed and exported again without re-fetching any pages.

Examples:
  # List all stored crawls
  urlgrabby history

  # List crawls for one seed
  urlgrabby history --seed https://example.com/

  # Re-export a stored crawl by session ID
  urlgrabby history --export 3 --format json --output report.json

  # Delete a stored crawl
  urlgrabby history --delete 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("seed", "s", "",
		"List only crawls for this seed URL")
	cmd.Flags().Int64P("export", "e", 0,
		"Re-export the crawl with this session ID (use the list to find IDs)")
	cmd.Flags().Int64P("delete", "D", 0,
		"Delete the crawl with this session ID")
	cmd.Flags().StringP("output", "o", "",
		"Export file path (default: stdout)")
	cmd.Flags().StringP("format", "f", config.FormatCSV,
		"Export format: csv, json, or markdown")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// The database must already exist; history never creates one.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no crawl history found (run 'urlgrabby crawl' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	exportID, err := cmd.Flags().GetInt64("export")
	if err != nil {
		return err
	}
	if exportID > 0 {
		return exportSession(ctx, cmd, db, exportID)
	}

	deleteID, err := cmd.Flags().GetInt64("delete")
	if err != nil {
		return err
	}
	if deleteID > 0 {
		return deleteSession(ctx, cmd, db, deleteID)
	}

	return listSessions(ctx, cmd, db)
}

// listSessions prints stored sessions as a table.
func listSessions(ctx context.Context, cmd *cobra.Command, db *database.CrawlDB) error {
	seed, err := cmd.Flags().GetString("seed")
	if err != nil {
		return err
	}

	var sessions []database.Session
	if seed != "" {
		sessions, err = db.SessionsForSeed(ctx, seed)
	} else {
		sessions, err = db.ListSessions(ctx)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No stored crawls.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEED\tSTATUS\tPAGES\tSTARTED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			s.ID, s.SeedURL, s.Status, s.PagesVisited,
			s.StartedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

// exportSession re-exports one stored crawl.
func exportSession(ctx context.Context, cmd *cobra.Command, db *database.CrawlDB, id int64) error {
	result, err := db.GetCrawl(ctx, id)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("no stored crawl with session ID %d", id)
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if output == "" {
		w, err := report.NewWriter(format, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		_, err = w.Write(result)
		return err
	}

	n, err := report.ExportFile(result, output, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes, %d pages)\n", output, n, result.PagesVisited())
	return nil
}

// deleteSession removes one stored crawl.
func deleteSession(ctx context.Context, cmd *cobra.Command, db *database.CrawlDB, id int64) error {
	deleted, err := db.DeleteSession(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no stored crawl with session ID %d", id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %d\n", id)
	return nil
}
