package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rudradey/hisab/internal/legacy"
)

func init() {
	rootCmd.AddCommand(importLegacyCmd)
}

var importLegacyCmd = &cobra.Command{
	Use:   "import-legacy PATH",
	Short: "One-time import from a legacy-format database file",
	Long: `Import every transaction from a legacy database file (text amounts,
"A to B" transfer strings) and rebuild all balance snapshots under the
current schema. Refuses to run against a store that already has
transactions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		imp := &legacy.Importer{Target: a.db, Cal: a.cal, Log: a.log}
		n, err := imp.Run(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("imported %d transactions\n", n)
		return nil
	},
}
