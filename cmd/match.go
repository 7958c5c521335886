package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyside-cli/internal/bookmarks"
	"github.com/sells-group/buyside-cli/internal/criteria"
	"github.com/sells-group/buyside-cli/internal/export"
	"github.com/sells-group/buyside-cli/internal/filter"
	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/query"
	"github.com/sells-group/buyside-cli/internal/reveal"
	"github.com/sells-group/buyside-cli/internal/scoring"
	"github.com/sells-group/buyside-cli/internal/search"
	"github.com/sells-group/buyside-cli/internal/source"
	"github.com/sells-group/buyside-cli/internal/store"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score and rank buyer candidates",
	Long: `Loads the buyer universe, scores every candidate against the
engagement's weighted criteria, applies structured filters and keyword
clauses, and prints the ranked list.

Examples:
  # Rank everything with default criteria
  match

  # Strategic buyers in the US and Canada above $50M revenue
  match --countries "United States,Canada" --min-revenue 50000000

  # Reweight criteria and drop one
  match --weight offering=80 --weight customer_base=60 --disable positioning

  # Keyword clauses fold left to right
  match --where offering:cloud --where "or:offering:saas" --where not:sector:on-prem

  # Save the shortlist for later
  match --project deal-042 --save "NA cloud buyers"

  # Export the ranked list
  match --output buyers.xlsx`,
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.String("project", "", "engagement the results belong to")
	f.String("countries", "", "comma-separated HQ countries")
	f.Int64("min-employees", 0, "minimum employee count")
	f.Int64("max-employees", 0, "maximum employee count (0=unbounded)")
	f.Int64("min-revenue", 0, "minimum revenue in dollars")
	f.Int64("max-revenue", 0, "maximum revenue in dollars (0=unbounded)")
	f.Int64("min-cash", 0, "minimum cash reserve in dollars")
	f.Int64("max-cash", 0, "maximum cash reserve in dollars (0=unbounded)")
	f.Int("min-score", 0, "minimum composite match score (0-100)")
	f.String("sponsor-backed", "", "filter on sponsor backing: true or false")
	f.String("public", "", "filter on public listing: true or false")
	f.String("sort", string(filter.SortBestMatch), "sort order: bestMatch, nameAsc, nameDesc")
	f.StringArray("where", nil, "keyword clause [op:]field:text (op: and, or, not; field: offering, sector, customers, keywords)")
	f.StringArray("weight", nil, "criterion weight override, id=0..100")
	f.String("disable", "", "comma-separated criterion ids to disable")
	f.String("save", "", "save results under this name (requires --project)")
	f.String("output", "", "export ranked list to file (.csv or .xlsx)")
	f.Bool("no-reveal", false, "skip the staged result disclosure")
	f.Int("limit", 25, "rows to print (0=all)")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scoringCfg, err := scoringConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	state, err := filterStateFromFlags(cmd)
	if err != nil {
		return err
	}
	whereFlags, _ := cmd.Flags().GetStringArray("where")
	q, err := parseQuery(whereFlags)
	if err != nil {
		return err
	}

	src, err := initSource()
	if err != nil {
		return err
	}
	buyers, err := source.Snapshot(ctx, src)
	if err != nil {
		return err
	}
	zap.L().Info("loaded buyer universe", zap.Int("buyers", len(buyers)))

	provider, err := initProvider(ctx, buyers)
	if err != nil {
		return err
	}

	engine := scoring.New(provider)
	scored := engine.ScoreAll(buyers, scoringCfg)
	results := filter.Apply(scored, state, q)

	if noReveal, _ := cmd.Flags().GetBool("no-reveal"); !noReveal {
		if err := revealResults(ctx); err != nil {
			return err
		}
	}

	project, _ := cmd.Flags().GetString("project")
	saveName, _ := cmd.Flags().GetString("save")

	var st store.Store
	if project != "" || saveName != "" {
		if st, err = initStore(ctx); err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
	}

	// Shortlisted buyers get a marker in the output.
	marks := bookmarks.NewSet()
	if project != "" {
		ids, err := st.ListSavedBuyers(ctx, project)
		if err != nil {
			return err
		}
		marks.Hydrate(ids)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	formatMatchTable(os.Stdout, results, limit, marks)

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		if err := writeExport(out, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %s\n", out)
	}

	if saveName != "" {
		saved, err := search.NewManager(st).Save(ctx, project, saveName, scoringCfg, results)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved search %s (%d buyers)\n", saved.ID, len(results))
	}

	return nil
}

func revealResults(ctx context.Context) error {
	opts := reveal.Options{
		Duration: time.Duration(cfg.Reveal.DurationSecs) * time.Second,
		Steps:    cfg.Reveal.Steps,
		OnProgress: func(p reveal.Progress) {
			fmt.Fprintf(os.Stderr, "\rMatching buyers... %3d%%", p.Percent)
		},
	}
	if err := reveal.Wait(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr)
		return err
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func scoringConfigFromFlags(cmd *cobra.Command) (model.ScoringConfig, error) {
	scoringCfg := criteria.DefaultConfig()

	weights, _ := cmd.Flags().GetStringArray("weight")
	for _, w := range weights {
		id, val, ok := strings.Cut(w, "=")
		if !ok {
			return nil, eris.Errorf("invalid --weight %q, want id=value", w)
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid --weight %q", w)
		}
		if err := criteria.SetWeight(scoringCfg, id, n); err != nil {
			return nil, err
		}
	}

	if disable, _ := cmd.Flags().GetString("disable"); disable != "" {
		for _, id := range strings.Split(disable, ",") {
			if err := criteria.SetEnabled(scoringCfg, strings.TrimSpace(id), false); err != nil {
				return nil, err
			}
		}
	}

	return scoringCfg, criteria.Validate(scoringCfg)
}

func filterStateFromFlags(cmd *cobra.Command) (filter.State, error) {
	f := cmd.Flags()
	state := filter.Reset()

	if countries, _ := f.GetString("countries"); countries != "" {
		for _, c := range strings.Split(countries, ",") {
			state.HQCountries = append(state.HQCountries, strings.TrimSpace(c))
		}
	}
	state.EmployeeRange.Min, _ = f.GetInt64("min-employees")
	state.EmployeeRange.Max, _ = f.GetInt64("max-employees")
	state.RevenueRange.Min, _ = f.GetInt64("min-revenue")
	state.RevenueRange.Max, _ = f.GetInt64("max-revenue")
	state.CashRange.Min, _ = f.GetInt64("min-cash")
	state.CashRange.Max, _ = f.GetInt64("max-cash")
	state.MinMatchScore, _ = f.GetInt("min-score")

	var err error
	if state.SponsorBacked, err = triStateFlag(cmd, "sponsor-backed"); err != nil {
		return state, err
	}
	if state.IsPublic, err = triStateFlag(cmd, "public"); err != nil {
		return state, err
	}

	sortKey, _ := f.GetString("sort")
	state.Sort = filter.SortKey(sortKey)

	return state, state.Validate()
}

func triStateFlag(cmd *cobra.Command, name string) (*bool, error) {
	raw, _ := cmd.Flags().GetString(name)
	switch raw {
	case "":
		return nil, nil
	case "true", "false":
		v := raw == "true"
		return &v, nil
	default:
		return nil, eris.Errorf("invalid --%s %q, want true or false", name, raw)
	}
}

// parseQuery turns repeatable [op:]field:text flags into clauses. The op
// defaults to and; on the first clause only a leading not changes anything.
func parseQuery(raw []string) (query.Query, error) {
	var q query.Query
	for _, item := range raw {
		clause := query.Clause{Op: query.OpAnd}

		head, rest, ok := strings.Cut(item, ":")
		if !ok {
			return nil, eris.Errorf("invalid --where %q, want [op:]field:text", item)
		}
		switch query.Op(head) {
		case query.OpAnd, query.OpOr, query.OpNot:
			clause.Op = query.Op(head)
			head, rest, ok = strings.Cut(rest, ":")
			if !ok {
				return nil, eris.Errorf("invalid --where %q, want [op:]field:text", item)
			}
		}

		switch f := query.Field(head); f {
		case query.FieldOffering, query.FieldSector, query.FieldCustomers, query.FieldKeywords:
			clause.Field = f
		default:
			return nil, eris.Errorf("unknown --where field %q", head)
		}

		clause.Text = rest
		q = append(q, clause)
	}
	return q, nil
}

func writeExport(path string, results []model.ScoredBuyer) error {
	switch {
	case strings.HasSuffix(path, ".csv"):
		return export.WriteCSVFile(path, results)
	case strings.HasSuffix(path, ".xlsx"):
		return export.WriteXLSX(path, results)
	default:
		return eris.Errorf("unsupported export format: %s (want .csv or .xlsx)", path)
	}
}

func formatMatchTable(w io.Writer, results []model.ScoredBuyer, limit int, marks *bookmarks.Set) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No buyers matched.")
		return
	}

	n := len(results)
	if limit > 0 && n > limit {
		n = limit
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tNAME\tKIND\tLOCATION\tREVENUE")
	for i, sb := range results[:n] {
		name := sb.Buyer.Name
		if marks != nil && marks.Contains(sb.Buyer.ID) {
			name = "* " + name
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			i+1, sb.Composite, name, sb.Buyer.Kind,
			sb.Buyer.HQCountry, export.FormatRevenue(sb.Buyer.Revenue))
	}
	tw.Flush()

	if n < len(results) {
		fmt.Fprintf(w, "... and %d more\n", len(results)-n)
	}
}
