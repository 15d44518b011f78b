// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kelvin/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current card to a file or stdout",
	Long: `Export writes the current card in the chosen format. The csl format
produces a CSL YAML bibliography of a paper card, ready for pandoc
--citeproc.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		sess, done, err := openSession()
		if err != nil {
			return err
		}
		defer done()

		cwv, err := sess.Context(context.Background())
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}
		if err := export.Write(w, cwv, export.Format(format)); err != nil {
			return err
		}
		if output != "" {
			logger.Info("exported card", "card", cwv.Card.ID, "format", format, "path", output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", string(export.FormatCSL), "export format: csl, json, yaml, table")
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}
