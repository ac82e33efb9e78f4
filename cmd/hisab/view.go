package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rudradey/hisab/internal/database/repository"
	"github.com/rudradey/hisab/internal/ledger"
	"github.com/rudradey/hisab/internal/service"
)

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(activityCmd)

	balanceCmd.Flags().String("period", "", "Month to show (yyyy-mm); empty shows the final balance")
	summaryCmd.Flags().String("period", "all", "Summary window: yyyy-mm, yyyy, or all")
	activityCmd.Flags().Int("limit", 20, "Number of entries to show")
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show balances, either for a month or the absolute final balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()
		ctx := context.Background()

		methodList, err := repository.NewMethodRepo(a.db).List(ctx)
		if err != nil {
			return err
		}

		periodFlag, _ := cmd.Flags().GetString("period")
		if periodFlag == "" {
			final, err := repository.NewSnapshotRepo(a.db).FinalBalances(ctx)
			if err != nil {
				return err
			}
			printBalances("Final balance ("+a.cfg.UI.CurrencySymbol+")", methodList, service.BalanceRow(final, methodList))
			return nil
		}

		p, err := parsePeriod(periodFlag)
		if err != nil {
			return err
		}
		if p.Mode != ledger.Monthly {
			return fmt.Errorf("balance needs a yyyy-mm period")
		}
		rec := &service.Reconstructor{DB: a.db, Cal: a.cal, Log: a.log}
		rows, ending, err := rec.Reconstruct(ctx, p)
		if err != nil {
			return err
		}
		names, err := methodNames(ctx, a)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		for _, row := range service.TxRows(rows, methodList, names) {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		w.Flush()
		printBalances(fmt.Sprintf("End of %s (%s)", p, a.cfg.UI.CurrencySymbol), methodList, service.BalanceRow(ending, methodList))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show income/expense aggregates for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()
		ctx := context.Background()

		periodFlag, _ := cmd.Flags().GetString("period")
		p, err := parsePeriod(periodFlag)
		if err != nil {
			return err
		}

		agg := &service.Summarizer{DB: a.db, Cal: a.cal}
		current, err := agg.Aggregate(ctx, p)
		if err != nil {
			return err
		}

		// MoM/YoY deltas exist only when the period has a predecessor.
		var delta service.DeltaView
		if prev, ok := p.Previous(a.cal); ok {
			previous, err := agg.Aggregate(ctx, prev)
			if err != nil {
				return err
			}
			delta = service.Diff(current, previous, true)
		} else {
			delta = service.Diff(current, service.Summary{}, false)
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		for _, row := range service.SummaryRows(current, delta) {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		fmt.Fprintln(w, "")
		for _, row := range service.MethodRows(current, delta) {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		fmt.Fprintln(w, "")
		for _, row := range service.TagRows(current, delta) {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		return w.Flush()
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the most recent activity-log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := repository.NewActivityRepo(a.db).List(context.Background(), limit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %-10s %s\n", e.CreatedAt.Format(time.RFC3339), e.Kind, e.Description)
		}
		return nil
	},
}

// parsePeriod reads "yyyy-mm", "yyyy", or "all".
func parsePeriod(s string) (ledger.Period, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return ledger.AllPeriod(), nil
	}
	if year, month, ok := strings.Cut(s, "-"); ok {
		y, errY := strconv.Atoi(year)
		m, errM := strconv.Atoi(month)
		if errY != nil || errM != nil || m < 1 || m > 12 {
			return ledger.Period{}, fmt.Errorf("invalid period %q", s)
		}
		return ledger.MonthPeriod(y, time.Month(m)), nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return ledger.Period{}, fmt.Errorf("invalid period %q", s)
	}
	return ledger.YearPeriod(y), nil
}

func printBalances(label string, methods []ledger.Method, row []string) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.Name
	}
	fmt.Fprintf(w, "%s\t%s\n", label, strings.Join(names, "\t"))
	fmt.Fprintf(w, "\t%s\n", strings.Join(row, "\t"))
	w.Flush()
}
