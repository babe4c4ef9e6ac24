package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one declarative scheduler run.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Routines are the probe routines added (immediately) before the
	// script runs, in order.
	Routines []RoutineSpec `yaml:"routines"`

	// Script is the frame script executed in order.
	Script []ScriptStep `yaml:"script"`

	// Assertions validate the final trace, counters, and registry.
	Assertions []Assertion `yaml:"assertions"`
}

// RoutineSpec describes one probe routine.
type RoutineSpec struct {
	// Behavior selects the probe: counter, pinger, listener, or spawner.
	Behavior string `yaml:"behavior"`

	// Tags are the routine's tags.
	Tags []string `yaml:"tags,omitempty"`

	// Counter names the counter the probe increments. Default "count".
	Counter string `yaml:"counter,omitempty"`

	// Period is seconds per cycle; 0 means frame-locked. Default 0.
	Period float64 `yaml:"period,omitempty"`

	// Cycles is the cycle budget. Default 1.
	Cycles float64 `yaml:"cycles,omitempty"`

	// Message names the message a pinger sends or a listener waits for.
	Message string `yaml:"message,omitempty"`

	// Target is the receiver tag (pinger) or listening tag (listener).
	Target string `yaml:"target,omitempty"`

	// Stage is before|after|soonest. Default after.
	Stage string `yaml:"stage,omitempty"`

	// Timeout is the listener's wait budget in seconds. Default 1.
	Timeout float64 `yaml:"timeout,omitempty"`
}

// ScriptStep is one frame-script entry. Exactly one field must be set.
type ScriptStep struct {
	// Update advances one frame with the given deltaTime.
	Update *float64 `yaml:"update,omitempty"`

	// Send enqueues a message.
	Send *SendStep `yaml:"send,omitempty"`

	// Pause/Resume/Block request the corresponding tag command.
	Pause  string `yaml:"pause,omitempty"`
	Resume string `yaml:"resume,omitempty"`
	Block  string `yaml:"block,omitempty"`

	// Stop requests a tag-addressed stop.
	Stop *StopStep `yaml:"stop,omitempty"`
}

// SendStep describes a scripted message.
type SendStep struct {
	Tag   string `yaml:"tag"`
	Name  string `yaml:"name"`
	Stage string `yaml:"stage,omitempty"`
}

// StopStep describes a scripted stop request.
type StopStep struct {
	Tag      string `yaml:"tag"`
	Children bool   `yaml:"children,omitempty"`
}

// Assertion validates one aspect of a scenario result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind/Unit/Tag/Name/Phase subset-match trace events
	// (trace_contains, trace_count).
	Kind  string `yaml:"kind,omitempty"`
	Unit  string `yaml:"unit,omitempty"`
	Tag   string `yaml:"tag,omitempty"`
	Name  string `yaml:"name,omitempty"`
	Phase string `yaml:"phase,omitempty"`

	// Kinds is the expected subsequence of event kinds (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`

	// Count is the expected match count (trace_count) or registry count
	// (tag_count).
	Count int `yaml:"count,omitempty"`

	// Counter and Value check a probe counter (counter_equals).
	Counter string `yaml:"counter,omitempty"`
	Value   int    `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertCounterEquals = "counter_equals"
	AssertTagCount      = "tag_count"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// (typos) and missing required fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Script) == 0 {
		return fmt.Errorf("script is required and must be non-empty")
	}

	for i, spec := range s.Routines {
		if _, ok := probes[spec.Behavior]; !ok {
			return fmt.Errorf("routines[%d]: unknown behavior %q", i, spec.Behavior)
		}
	}

	for i, step := range s.Script {
		set := 0
		if step.Update != nil {
			set++
		}
		if step.Send != nil {
			set++
			if step.Send.Tag == "" || step.Send.Name == "" {
				return fmt.Errorf("script[%d].send: tag and name are required", i)
			}
		}
		if step.Pause != "" {
			set++
		}
		if step.Resume != "" {
			set++
		}
		if step.Block != "" {
			set++
		}
		if step.Stop != nil {
			set++
			if step.Stop.Tag == "" {
				return fmt.Errorf("script[%d].stop: tag is required", i)
			}
		}
		if set != 1 {
			return fmt.Errorf("script[%d]: exactly one action per step, got %d", i, set)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertCounterEquals:
		if a.Counter == "" {
			return fmt.Errorf("assertions[%d]: counter is required for counter_equals", index)
		}
	case AssertTagCount:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for tag_count", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
