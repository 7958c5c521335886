package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sells-group/buyside-cli/internal/search"
)

var exportCmd = &cobra.Command{
	Use:   "export <search-id>",
	Short: "Export a saved search to CSV or XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		results, err := search.NewManager(st).LoadResults(ctx, args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = args[0] + ".xlsx"
		}
		if !filepath.IsAbs(out) {
			out = filepath.Join(cfg.Export.Dir, out)
		}

		if err := writeExport(out, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d buyers to %s\n", len(results), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("output", "", "output path, .csv or .xlsx (default <search-id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
