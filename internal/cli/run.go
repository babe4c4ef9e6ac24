package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/metronome/internal/harness"
	"github.com/roach88/metronome/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scheduler scenario",
		Long: `Run a declarative scheduler scenario and print its frame trace,
probe counters, and final tag snapshot. Assertion failures exit non-zero.

With --db the trace is also written to a SQLite file for later inspection
with "metronome trace".

Example:
  metronome run scenarios/single-shot.yaml
  metronome run scenarios/single-shot.yaml --db ./trace.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "also record the trace to this SQLite file")
	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return err
	}

	result, runErr := harness.Run(scenario)
	if result != nil {
		if opts.Database != "" {
			if err := persistTrace(opts.Database, result); err != nil {
				return err
			}
		}
		if err := printResult(cmd.OutOrStdout(), opts.Format, scenario.Name, result); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("scenario %s: %w", scenario.Name, runErr)
	}
	return nil
}

func persistTrace(path string, result *harness.Result) error {
	store, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	for _, ev := range result.Trace {
		store.Record(ev)
	}
	return nil
}
