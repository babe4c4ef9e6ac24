package harness

import (
	"fmt"

	"github.com/roach88/metronome/internal/engine"
)

// Check validates every assertion against a result. The first failure is
// returned with its assertion index.
func Check(result *Result, assertions []Assertion) error {
	for i, a := range assertions {
		if err := check(result, &a); err != nil {
			return fmt.Errorf("assertions[%d] (%s): %w", i, a.Type, err)
		}
	}
	return nil
}

func check(result *Result, a *Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if countMatches(result.Trace, a) == 0 {
			return fmt.Errorf("no trace event matches kind=%q unit=%q tag=%q name=%q phase=%q",
				a.Kind, a.Unit, a.Tag, a.Name, a.Phase)
		}
		return nil

	case AssertTraceCount:
		got := countMatches(result.Trace, a)
		if got != a.Count {
			return fmt.Errorf("expected %d matching events, got %d", a.Count, got)
		}
		return nil

	case AssertTraceOrder:
		next := 0
		for _, ev := range result.Trace {
			if next < len(a.Kinds) && ev.Kind == a.Kinds[next] {
				next++
			}
		}
		if next != len(a.Kinds) {
			return fmt.Errorf("kinds %v not found in order; matched %d", a.Kinds, next)
		}
		return nil

	case AssertCounterEquals:
		got := result.Counters[a.Counter]
		if got != a.Value {
			return fmt.Errorf("counter %q = %d, expected %d", a.Counter, got, a.Value)
		}
		return nil

	case AssertTagCount:
		got := 0
		for _, tc := range result.Snapshot {
			if tc.Tag == a.Tag {
				got = tc.Count
				break
			}
		}
		if got != a.Count {
			return fmt.Errorf("tag %q count = %d, expected %d", a.Tag, got, a.Count)
		}
		return nil

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// countMatches counts trace events subset-matching the assertion's
// kind/unit/tag/name/phase fields; empty fields match anything.
func countMatches(events []engine.TraceEvent, a *Assertion) int {
	n := 0
	for _, ev := range events {
		if a.Kind != "" && ev.Kind != a.Kind {
			continue
		}
		if a.Unit != "" && ev.Unit != a.Unit {
			continue
		}
		if a.Tag != "" && ev.Tag != a.Tag {
			continue
		}
		if a.Name != "" && ev.Name != a.Name {
			continue
		}
		if a.Phase != "" && ev.Phase != a.Phase {
			continue
		}
		n++
	}
	return n
}
