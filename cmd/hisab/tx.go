package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rudradey/hisab/internal/database/repository"
	"github.com/rudradey/hisab/internal/ledger"
	"github.com/rudradey/hisab/internal/service"
	"github.com/rudradey/hisab/internal/verify"
)

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(swapCmd)
	rootCmd.AddCommand(searchCmd)

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringP("date", "d", "", "Transaction date (yyyy-mm-dd)")
		c.Flags().StringP("details", "D", "", "Free-text details")
		c.Flags().StringP("amount", "a", "", "Amount; inline arithmetic like 5+3*2 is allowed")
		c.Flags().StringP("type", "t", "", "Transaction type: income, expense, or transfer")
		c.Flags().StringP("method", "m", "", "Method name")
		c.Flags().String("to", "", "Destination method (transfers only)")
		c.Flags().String("tags", "", "Comma-separated tags")
	}
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new transaction",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		t, err := a.transactionFromFlags(cmd)
		if err != nil {
			return err
		}
		mut := &service.Mutator{DB: a.db, Cal: a.cal, Log: a.log}
		added, err := mut.Add(context.Background(), t)
		if err != nil {
			return err
		}
		fmt.Printf("added transaction %d\n", added.ID)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a transaction by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		mut := &service.Mutator{DB: a.db, Cal: a.cal, Log: a.log}
		if err := mut.Delete(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("deleted transaction %d\n", id)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Replace a transaction's fields, keeping its id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		t, err := a.transactionFromFlags(cmd)
		if err != nil {
			return err
		}
		mut := &service.Mutator{DB: a.db, Cal: a.cal, Log: a.log}
		if err := mut.Edit(context.Background(), id, t); err != nil {
			return err
		}
		fmt.Printf("edited transaction %d\n", id)
		return nil
	},
}

var swapCmd = &cobra.Command{
	Use:   "swap ID_A ID_B",
	Short: "Swap the display order of two same-date transactions",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idA, errA := strconv.ParseInt(args[0], 10, 64)
		idB, errB := strconv.ParseInt(args[1], 10, 64)
		if errA != nil || errB != nil {
			return fmt.Errorf("invalid ids %q %q", args[0], args[1])
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		mut := &service.Mutator{DB: a.db, Cal: a.cal, Log: a.log}
		return mut.SwitchPosition(context.Background(), idA, idB)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search TEXT",
	Short: "Find transactions by details, method, or tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := context.Background()
		mut := &service.Mutator{DB: a.db, Cal: a.cal, Log: a.log}
		found, err := mut.Search(ctx, args[0])
		if err != nil {
			return err
		}
		names, err := methodNames(ctx, a)
		if err != nil {
			return err
		}
		for _, t := range found {
			printTx(t, names)
		}
		fmt.Printf("%d match(es)\n", len(found))
		return nil
	},
}

// transactionFromFlags runs each raw flag string through the verify layer
// and resolves methods against the store, mirroring the status-line flow
// the interactive UI uses.
func (a *app) transactionFromFlags(cmd *cobra.Command) (ledger.Transaction, error) {
	ctx := context.Background()
	methods := repository.NewMethodRepo(a.db)
	known, err := methods.Names(ctx)
	if err != nil {
		return ledger.Transaction{}, err
	}

	rawDate, _ := cmd.Flags().GetString("date")
	date, err := verify.Date(rawDate, verify.DateExact)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("date: %w (suggestion: %s)", err, date)
	}
	parsedDate, err := time.Parse(ledger.DateLayout, date)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("date: %w", err)
	}

	rawAmount, _ := cmd.Flags().GetString("amount")
	amountStr, err := verify.Amount(rawAmount)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("amount: %w (suggestion: %s)", err, amountStr)
	}
	amount, err := ledger.ParseCents(amountStr)
	if err != nil {
		return ledger.Transaction{}, err
	}

	rawType, _ := cmd.Flags().GetString("type")
	typeStr, err := verify.TxType(rawType)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("type: %w", err)
	}
	kind, err := ledger.ParseTxType(typeStr)
	if err != nil {
		return ledger.Transaction{}, err
	}

	rawMethod, _ := cmd.Flags().GetString("method")
	methodName, err := verify.Method(rawMethod, known)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("method: %w", err)
	}
	method, err := methods.ByName(ctx, methodName)
	if err != nil {
		return ledger.Transaction{}, err
	}

	details, _ := cmd.Flags().GetString("details")
	rawTags, _ := cmd.Flags().GetString("tags")
	tags := splitVerifiedTags(verify.Tags(rawTags))

	t := ledger.Transaction{
		Date:     parsedDate,
		Details:  details,
		Amount:   amount,
		Type:     kind,
		MethodID: method.ID,
		Tags:     tags,
	}

	if kind == ledger.Transfer {
		rawTo, _ := cmd.Flags().GetString("to")
		toName, err := verify.Method(rawTo, known)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("to method: %w", err)
		}
		to, err := methods.ByName(ctx, toName)
		if err != nil {
			return ledger.Transaction{}, err
		}
		t.ToMethodID = &to.ID
	}
	return t, nil
}

func splitVerifiedTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ", ")
	return parts
}

func methodNames(ctx context.Context, a *app) (map[int64]string, error) {
	list, err := repository.NewMethodRepo(a.db).List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(list))
	for _, m := range list {
		out[m.ID] = m.Name
	}
	return out, nil
}

func printTx(t ledger.Transaction, names map[int64]string) {
	method := names[t.MethodID]
	if t.Type == ledger.Transfer && t.ToMethodID != nil {
		method = method + " → " + names[*t.ToMethodID]
	}
	fmt.Printf("%6d  %s  %-10s %10s  %-20s %s\n",
		t.ID, t.Date.Format(ledger.DateLayout), t.Type, t.Amount, method, t.Details)
}
