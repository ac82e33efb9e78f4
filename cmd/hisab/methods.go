package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/database/repository"
)

func init() {
	rootCmd.AddCommand(methodCmd)
	methodCmd.AddCommand(methodAddCmd)
	methodCmd.AddCommand(methodListCmd)
	methodCmd.AddCommand(methodRenameCmd)
	methodCmd.AddCommand(methodMoveCmd)
}

var methodCmd = &cobra.Command{
	Use:   "method",
	Short: "Manage money methods (Bank, Cash, ...)",
}

var methodAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a new method at the end of the display order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		err = database.WithTx(a.db, func(tx *sql.Tx) error {
			m, err := repository.NewMethodRepo(tx).Create(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("created method %q at position %d\n", m.Name, m.Position)
			return nil
		})
		return err
	},
}

var methodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List methods in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		methods, err := repository.NewMethodRepo(a.db).List(context.Background())
		if err != nil {
			return err
		}
		for _, m := range methods {
			fmt.Printf("%3d  %s\n", m.Position, m.Name)
		}
		return nil
	},
}

var methodRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename a method; transactions keep pointing at it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := context.Background()
		return database.WithTx(a.db, func(tx *sql.Tx) error {
			repo := repository.NewMethodRepo(tx)
			m, err := repo.ByName(ctx, args[0])
			if err != nil {
				return err
			}
			return repo.Rename(ctx, m.ID, args[1])
		})
	},
}

var methodMoveCmd = &cobra.Command{
	Use:   "move NAME POSITION",
	Short: "Move a method to a new display position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := context.Background()
		return database.WithTx(a.db, func(tx *sql.Tx) error {
			repo := repository.NewMethodRepo(tx)
			m, err := repo.ByName(ctx, args[0])
			if err != nil {
				return err
			}
			return repo.Reposition(ctx, m.ID, pos)
		})
	},
}
