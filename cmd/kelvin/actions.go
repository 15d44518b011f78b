// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kelvin/internal/action"
	"github.com/pdiddy/kelvin/internal/export"
)

// --- actions ---

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the actions offered for the current card",
	Long: `Actions lists every action that applies to the current card and its
marked rows, numbered for "run". Marking rows changes what is offered:
a marked note offers a search for its text, a marked paper offers a view
of its abstract and body.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		actions, err := sess.Actions(context.Background())
		if err != nil {
			return err
		}
		if asJSON {
			infos := make([]action.Info, len(actions))
			for i, a := range actions {
				infos[i] = action.Describe(a)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}
		printActions(os.Stdout, actions)
		return nil
	},
}

// --- run ---

var runCmd = &cobra.Command{
	Use:   "run <n>",
	Short: "Run an offered action and make its result the current card",
	Long: `Run executes action number n from "actions" against the current card.
Param values can be supplied or overridden with --param name=value; an
offered search already carries the marked note's text as its query.

Examples:
  kelvin run 1 --param query="quantum error correction"
  kelvin run 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawParams, _ := cmd.Flags().GetStringArray("param")
		format, _ := cmd.Flags().GetString("format")

		values, err := parseParams(rawParams)
		if err != nil {
			return err
		}

		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		ctx := context.Background()
		actions, err := sess.Actions(ctx)
		if err != nil {
			return err
		}
		a, err := pickAction(actions, args[0])
		if err != nil {
			return err
		}
		if len(values) > 0 {
			if a, err = sess.Registry().Rebuild(a, values); err != nil {
				return err
			}
		}

		fmt.Fprintf(os.Stderr, "Running %s\n", a.Label())
		cwv, err := sess.Run(ctx, a)
		if err != nil {
			return err
		}
		return export.Write(os.Stdout, cwv, export.Format(format))
	},
}

// pickAction returns the action numbered ref (1-based) in actions.
func pickAction(actions []action.Action, ref string) (action.Action, error) {
	n, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("action number %q is not a number", ref)
	}
	if n < 1 || n > len(actions) {
		return nil, fmt.Errorf("action %d out of range 1-%d", n, len(actions))
	}
	return actions[n-1], nil
}

// parseParams splits name=value pairs. A later pair for the same name wins.
func parseParams(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, p := range raw {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("param %q: expected name=value", p)
		}
		out[name] = value
	}
	return out, nil
}

func printActions(w io.Writer, actions []action.Action) {
	if len(actions) == 0 {
		fmt.Fprintln(w, "No actions apply to this card.")
		return
	}
	for i, a := range actions {
		var params []string
		for _, p := range a.Params() {
			params = append(params, fmt.Sprintf("%s=%q", p.Name, p.Value))
		}
		fmt.Fprintf(w, "%3d  %s", i+1, a.Label())
		if len(params) > 0 {
			fmt.Fprintf(w, "  [%s]", strings.Join(params, " "))
		}
		fmt.Fprintln(w)
	}
}

func init() {
	actionsCmd.Flags().Bool("json", false, "output actions as JSON")
	runCmd.Flags().StringArray("param", nil, "param value as name=value (repeatable)")
	runCmd.Flags().String("format", string(export.FormatTable), "output format for the new card: table, json, yaml, csl")

	rootCmd.AddCommand(actionsCmd, runCmd)
}
