// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kelvin/internal/export"
	"github.com/pdiddy/kelvin/internal/workspace"
	"github.com/pdiddy/kelvin/pkg/types"
)

// --- init ---

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workspace and its first, empty note card",
	Long: `Init creates the workspace directory and database and makes an empty
text card the current context. Running it on an existing workspace only
shows the current card.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		cwv, created, err := sess.Init(context.Background())
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Initialized workspace in %s\n", cfg.Workspace.Dir)
		} else {
			fmt.Printf("Workspace already initialized in %s\n", cfg.Workspace.Dir)
		}
		export.Table(os.Stdout, cwv)
		return nil
	},
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current card and its marked rows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		cwv, err := sess.Context(context.Background())
		if err != nil {
			return err
		}
		return export.Write(os.Stdout, cwv, export.Format(format))
	},
}

// --- mark / clear ---

var markCmd = &cobra.Command{
	Use:   "mark <row>...",
	Short: "Mark rows of the current card",
	Long: `Mark adds rows to the current card's selection. A row is named by its
number as printed by "show", by its ID, or by a unique ID prefix.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		cwv, err := sess.Mark(context.Background(), args...)
		if err != nil {
			return err
		}
		export.Table(os.Stdout, cwv)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Unmark every row of the current card",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		cwv, err := sess.Clear(context.Background())
		if err != nil {
			return err
		}
		export.Table(os.Stdout, cwv)
		return nil
	},
}

// --- history / checkout ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List every card in the workspace, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		hist, err := sess.History(context.Background())
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(hist)
		}
		printHistory(os.Stdout, hist)
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <card>",
	Short: "Make an earlier card the current context again",
	Long: `Checkout returns to a card listed by "history", together with the rows
that were marked on it. The card may be named by a unique ID prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		ctx := context.Background()
		hist, err := sess.History(ctx)
		if err != nil {
			return err
		}
		id, err := resolveCard(hist, args[0])
		if err != nil {
			return err
		}
		cwv, err := sess.Checkout(ctx, id)
		if err != nil {
			return err
		}
		export.Table(os.Stdout, cwv)
		return nil
	},
}

// resolveCard finds the card in hist whose ID equals ref or starts with it.
func resolveCard(hist []workspace.CardSummary, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty card reference: %w", workspace.ErrCardNotFound)
	}
	var match string
	for _, c := range hist {
		if c.ID == ref {
			return c.ID, nil
		}
		if strings.HasPrefix(c.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("card prefix %q is ambiguous: %w", ref, workspace.ErrCardNotFound)
			}
			match = c.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%q: %w", ref, workspace.ErrCardNotFound)
	}
	return match, nil
}

func printHistory(w io.Writer, hist []workspace.CardSummary) {
	if len(hist) == 0 {
		fmt.Fprintln(w, "No cards.")
		return
	}
	for _, c := range hist {
		cur := " "
		if c.Current {
			cur = "*"
		}
		fmt.Fprintf(w, "%s %-8s  %-5s  %3d rows  %3d marked  %s\n",
			cur, c.ID[:min(8, len(c.ID))], kindLabel(c.Kind), c.Rows, c.Selected, c.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func init() {
	showCmd.Flags().String("format", string(export.FormatTable), "output format: table, json, yaml, csl")
	historyCmd.Flags().Bool("json", false, "output history as JSON")

	rootCmd.AddCommand(initCmd, showCmd, markCmd, clearCmd, historyCmd, checkoutCmd)
}

// kindLabel is the short name printed for a card kind.
func kindLabel(k types.CardKind) string {
	return strings.TrimSuffix(string(k), "Card")
}
