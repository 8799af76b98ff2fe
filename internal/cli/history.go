package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/ir"
	"github.com/roach88/sentropy/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Observer  string
	Level     string
	Converged string // "", "true", or "false"
	Since     int64
	Limit     int
	Tail      bool
}

// HistoryResult holds the journaled measurements matching a query.
type HistoryResult struct {
	Measurements []ir.Measurement `json:"measurements"`
	Count        int              `json:"count"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query journaled measurements",
		Long: `Query measurements recorded in the journal, oldest first.

The journal keeps every measurement, including those evicted from the
in-memory history. Requires --db (or SENTROPY_DB).

Examples:
  sentropy history --db ./sentropy.db
  sentropy history --db ./sentropy.db --observer expert --converged false
  sentropy history --db ./sentropy.db --limit 10 --tail --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Observer, "observer", "", "only measurements by this observer")
	cmd.Flags().StringVar(&opts.Level, "level", "", "only measurements taken at this precision level")
	cmd.Flags().StringVar(&opts.Converged, "converged", "", "only converged (true) or unconverged (false) measurements")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "only measurements with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of measurements (0 = all)")
	cmd.Flags().BoolVar(&opts.Tail, "tail", false, "with --limit, return the newest measurements")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	filter, err := opts.filter()
	if err != nil {
		return invalidArgs(f, err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return f.Fail("invalid configuration", err)
	}
	if cfg.DB == "" {
		return f.Fail("failed to query history", ir.NewError(ir.KindConfiguration, "history",
			"a journal is required: pass --db or set SENTROPY_DB").WithDetail("field", "db"))
	}

	st, err := store.Open(cfg.DB)
	if err != nil {
		return f.Fail("failed to open database", ir.WrapError(ir.KindIO, "open_database", err))
	}
	defer st.Close()

	ms, err := st.QueryMeasurements(cmd.Context(), filter)
	if err != nil {
		return f.Fail("failed to query history", ir.WrapError(ir.KindIO, "query_measurements", err))
	}

	result := HistoryResult{Measurements: ms, Count: len(ms)}
	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	if len(ms) == 0 {
		fmt.Fprintln(w, "No measurements found.")
		return nil
	}
	fmt.Fprintf(w, "%-6s %-38s %-12s %-10s %-12s %s\n", "SEQ", "ID", "OBSERVER", "PRECISION", "MAGNITUDE", "CONVERGED")
	for _, m := range ms {
		fmt.Fprintf(w, "%-6d %-38s %-12s %-10s %-12s %t\n",
			m.Seq, m.ID, m.Observer, m.Precision, formatFloat(m.Magnitude), m.Converged)
	}
	fmt.Fprintf(w, "\n%d measurement(s)\n", len(ms))
	return nil
}

// filter converts the command flags to a store filter.
func (o *HistoryOptions) filter() (store.MeasurementFilter, error) {
	f := store.MeasurementFilter{
		SinceSeq: o.Since,
		Limit:    o.Limit,
		Tail:     o.Tail,
	}
	if o.Limit < 0 {
		return f, fmt.Errorf("--limit must not be negative, got %d", o.Limit)
	}
	if o.Tail && o.Limit == 0 {
		return f, fmt.Errorf("--tail requires --limit")
	}
	if o.Observer != "" {
		obs, err := ir.ParseObserver(o.Observer)
		if err != nil {
			return f, err
		}
		f.Observer = &obs
	}
	if o.Level != "" {
		p, err := ir.ParsePrecision(o.Level)
		if err != nil {
			return f, err
		}
		f.Precision = &p
	}
	if o.Converged != "" {
		b, err := strconv.ParseBool(o.Converged)
		if err != nil {
			return f, fmt.Errorf("--converged must be true or false, got %q", o.Converged)
		}
		f.Converged = &b
	}
	return f, nil
}
