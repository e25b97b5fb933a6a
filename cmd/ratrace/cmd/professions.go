package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/ratrace/internal/money"
	"github.com/rustyeddy/ratrace/setup"
)

var professionsCmd = &cobra.Command{
	Use:   "professions",
	Short: "List the professions players can be dealt",
	Long: `Print every profession with its salary, savings and the monthly
payments of its starting debts.

Use the ID column in the players section of a config file to pin a seat to
a profession.`,
	Args: cobra.NoArgs,
	RunE: runProfessions,
}

func init() {
	rootCmd.AddCommand(professionsCmd)
}

func runProfessions(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-14s %-14s %10s %10s %10s\n", "ID", "TITLE", "SALARY", "SAVINGS", "PAYMENTS")
	for _, p := range setup.Professions {
		payments := 0
		for _, l := range setup.Liabilities(p) {
			payments += l.Payment
		}
		fmt.Fprintf(out, "%-14s %-14s %10s %10s %10s\n",
			p.ID, p.Title, money.Format(p.Salary), money.Format(p.Savings), money.Format(payments))
	}
	return nil
}
