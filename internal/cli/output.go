package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/metronome/internal/engine"
	"github.com/roach88/metronome/internal/harness"
)

// printResult writes a scenario result in the selected format.
func printResult(w io.Writer, format, name string, result *harness.Result) error {
	if format == "json" {
		return writeJSON(w, map[string]any{
			"scenario": name,
			"trace":    result.Trace,
			"counters": result.Counters,
			"tags":     result.Snapshot,
		})
	}

	fmt.Fprintf(w, "scenario: %s\n", name)
	fmt.Fprintf(w, "trace (%d events):\n", len(result.Trace))
	printEvents(w, result.Trace)
	fmt.Fprintln(w, "counters:")
	for k, v := range result.Counters {
		fmt.Fprintf(w, "  %s = %d\n", k, v)
	}
	fmt.Fprintln(w, "tags:")
	for _, tc := range result.Snapshot {
		fmt.Fprintf(w, "  %s = %d\n", tc.Tag, tc.Count)
	}
	return nil
}

// printEvents writes trace events one per line.
func printEvents(w io.Writer, events []engine.TraceEvent) {
	for _, ev := range events {
		fmt.Fprintf(w, "  %6d f%-4d %-16s %-18s", ev.Seq, ev.Frame, ev.Phase, ev.Kind)
		if ev.Unit != "" {
			fmt.Fprintf(w, " unit=%s", ev.Unit)
		}
		if ev.Tag != "" {
			fmt.Fprintf(w, " tag=%s", ev.Tag)
		}
		if ev.Name != "" {
			fmt.Fprintf(w, " name=%s", ev.Name)
		}
		if ev.Detail != "" {
			fmt.Fprintf(w, " (%s)", ev.Detail)
		}
		fmt.Fprintln(w)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
