package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/search"
)

var searchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "Manage saved searches",
	Long:  "Commands for listing, replaying, and deleting saved buyer searches.",
}

// -- searches list --

var searchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches for a project",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		project, _ := cmd.Flags().GetString("project")
		summaries, err := search.NewManager(st).List(ctx, project)
		if err != nil {
			return err
		}

		if len(summaries) == 0 {
			fmt.Fprintln(os.Stderr, "No saved searches.")
			return nil
		}

		formatSearchList(os.Stdout, summaries)
		return nil
	},
}

// -- searches results --

var searchesResultsCmd = &cobra.Command{
	Use:   "results <search-id>",
	Short: "Show the snapshot of a saved search",
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

		limit, _ := cmd.Flags().GetInt("limit")
		formatMatchTable(os.Stdout, results, limit, nil)
		return nil
	},
}

// -- searches delete --

var searchesDeleteCmd = &cobra.Command{
	Use:   "delete <search-id>",
	Short: "Delete a saved search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := search.NewManager(st).Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted %s\n", args[0])
		return nil
	},
}

func formatSearchList(w io.Writer, summaries []model.SavedSearchSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROJECT\tNAME\tCREATED")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			s.ID, s.ProjectID, s.Name, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func init() {
	searchesListCmd.Flags().String("project", "", "filter by project")
	searchesResultsCmd.Flags().Int("limit", 25, "rows to print (0=all)")

	searchesCmd.AddCommand(searchesListCmd)
	searchesCmd.AddCommand(searchesResultsCmd)
	searchesCmd.AddCommand(searchesDeleteCmd)
	rootCmd.AddCommand(searchesCmd)
}
