package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/metronome/internal/engine"
	"github.com/roach88/metronome/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Frame int64
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts, Frame: -1}

	cmd := &cobra.Command{
		Use:   "trace <trace.db>",
		Short: "Inspect a recorded trace database",
		Long: `Read a SQLite trace file written by "metronome run --db" and print
its events. With --frame only that frame's events are shown.

Example:
  metronome trace ./trace.db
  metronome trace ./trace.db --frame 3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Frame, "frame", -1, "show only events from this frame")
	return cmd
}

func showTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	store, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	var events []engine.TraceEvent
	if opts.Frame >= 0 {
		events, err = store.FrameEvents(ctx, opts.Frame)
	} else {
		events, err = store.Events(ctx)
	}
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), events)
	}
	last, err := store.LastFrame(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d events, last frame %d:\n", len(events), last)
	printEvents(cmd.OutOrStdout(), events)
	return nil
}
