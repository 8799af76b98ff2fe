package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/ir"
)

// NewAlignCommand creates the align command.
func NewAlignCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align <knowledge> <time> <entropy>",
		Short: "Align a coordinate through the fixed coupling matrix",
		Long: `Align three S components into a marked coordinate and cache it.

Aligning the same components again within one cache bucket replaces the
cached coordinate. Non-finite components are rejected. Separate negative
values from flags with --.

Examples:
  sentropy align 1000 0.5 0.01
  sentropy align --db ./sentropy.db -- -1 2 3`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runAlign(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	v, err := parseFloats(args)
	if err != nil {
		return invalidArgs(f, err)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, opts, cmd, sessionOptions{})
	if err != nil {
		return f.Fail("failed to start engine", err)
	}
	defer s.Close()

	c, err := s.engine.Align(ctx, v[0], v[1], v[2])
	if err != nil {
		return f.Fail("alignment failed", err)
	}

	if f.JSON() {
		return f.Success(c)
	}
	printCoordinate(f.Writer, c, s.engine.Precision())
	return nil
}

func printCoordinate(w io.Writer, c ir.Coordinate, level ir.Precision) {
	fmt.Fprintf(w, "Coordinate %s\n", c.ID)
	fmt.Fprintf(w, "  knowledge: %s\n", formatFloat(c.Knowledge))
	fmt.Fprintf(w, "  time:      %s\n", formatFloat(c.Time))
	fmt.Fprintf(w, "  entropy:   %s\n", formatFloat(c.Entropy))
	fmt.Fprintf(w, "  magnitude: %s\n", formatFloat(c.Magnitude()))
	fmt.Fprintf(w, "  optimal:   %t\n", c.IsOptimal(level))
	fmt.Fprintf(w, "  marker:    %s\n", c.Marker)
}
