package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/ir"
)

// StatsResult is the engine state reported by the stats command.
type StatsResult struct {
	Precision   string              `json:"precision"`
	Seq         int64               `json:"seq"`
	HistoryLen  int                 `json:"history_len"`
	CacheSize   int                 `json:"cache_size"`
	Integration ir.IntegrationStats `json:"integration"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show integration statistics and engine state",
		Long: `Show the integration tracker's statistics together with history and
cache sizes. Without --db the engine is empty, so stats are most useful
against a journal.

Examples:
  sentropy stats --db ./sentropy.db
  sentropy stats --db ./sentropy.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}

	return cmd
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := openSession(cmd.Context(), opts, cmd, sessionOptions{})
	if err != nil {
		return f.Fail("failed to start engine", err)
	}
	defer s.Close()

	result := StatsResult{
		Precision:   s.engine.Precision().String(),
		Seq:         s.engine.Seq(),
		HistoryLen:  s.engine.HistoryLen(),
		CacheSize:   s.engine.CacheLen(),
		Integration: s.engine.IntegrationStats(),
	}

	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "Engine (%s precision, seq %d)\n", result.Precision, result.Seq)
	fmt.Fprintf(w, "  history:            %d measurement(s)\n", result.HistoryLen)
	fmt.Fprintf(w, "  cache:              %d coordinate(s)\n", result.CacheSize)
	printStats(w, result.Integration)
	return nil
}
