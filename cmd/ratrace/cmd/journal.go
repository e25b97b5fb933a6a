package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ratrace/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the game narration journal",
	Long: `Query and display narration recorded in a SQLite journal.

Subcommands:
  entry  - Show one entry by ID
  game   - List every entry of a game
  turn   - List the entries of one turn of a game
  recent - List the most recent entries across games

Examples:
  ratrace journal recent -n 20
  ratrace journal game 5f1c2d3e-...
  ratrace journal turn 5f1c2d3e-... 12`,
}

var journalEntryCmd = &cobra.Command{
	Use:   "entry <entry-id>",
	Short: "Show one entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEntry,
}

var journalGameCmd = &cobra.Command{
	Use:   "game <game-id>",
	Short: "List every entry of a game",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalGame,
}

var journalTurnCmd = &cobra.Command{
	Use:   "turn <game-id> <turn>",
	Short: "List the entries of one turn",
	Args:  cobra.ExactArgs(2),
	RunE:  runJournalTurn,
}

var journalRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent entries",
	Args:  cobra.NoArgs,
	RunE:  runJournalRecent,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalEntryCmd)
	journalCmd.AddCommand(journalGameCmd)
	journalCmd.AddCommand(journalTurnCmd)
	journalCmd.AddCommand(journalRecentCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./ratrace.sqlite", "path to SQLite journal DB")
	journalRecentCmd.Flags().IntVarP(&journalLimit, "limit", "n", 50, "number of entries")
}

func openJournalDB() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalEntry(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	e, err := j.Get(args[0])
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatEntryOrg(e))
	return nil
}

func runJournalGame(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.ListByGame(args[0])
	if err != nil {
		return fmt.Errorf("query game: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatGameOrg(entries))
	return nil
}

func runJournalTurn(cmd *cobra.Command, args []string) error {
	turn, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("turn: %w", err)
	}

	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.ListByTurn(args[0], turn)
	if err != nil {
		return fmt.Errorf("query turn: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatGameOrg(entries))
	return nil
}

func runJournalRecent(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(journalLimit)
	if err != nil {
		return fmt.Errorf("query recent: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatGameOrg(entries))
	return nil
}
