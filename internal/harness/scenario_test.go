package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenarioYAML = `
name: smoke
description: "One counter, two frames"
routines:
  - behavior: counter
    tags: [ticker]
    counter: ticks
    cycles: 2
script:
  - update: 0.25
  - update: 0.25
assertions:
  - type: counter_equals
    counter: ticks
    value: 2
`

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(validScenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, "smoke", s.Name)
	assert.Equal(t, "One counter, two frames", s.Description)
	require.Len(t, s.Routines, 1)
	assert.Equal(t, "counter", s.Routines[0].Behavior)
	assert.Equal(t, []string{"ticker"}, s.Routines[0].Tags)
	assert.Equal(t, 2.0, s.Routines[0].Cycles)
	assert.Len(t, s.Script, 2)
	require.Len(t, s.Assertions, 1)
	assert.Equal(t, AssertCounterEquals, s.Assertions[0].Type)
}

func TestLoadScenario_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenarioYAML), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "unknown top-level key"
scirpt:
  - update: 0.25
`))
	require.Error(t, err, "strict decoding rejects typos")
}

func TestParseScenario_MissingName(t *testing.T) {
	_, err := ParseScenario([]byte(`
description: "no name"
script:
  - update: 0.25
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestParseScenario_MissingDescription(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bare
script:
  - update: 0.25
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestParseScenario_EmptyScript(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: empty
description: "no script"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script is required")
}

func TestParseScenario_UnknownBehavior(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad
description: "unknown probe"
routines:
  - behavior: exploder
script:
  - update: 0.25
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown behavior "exploder"`)
}

func TestParseScenario_StepMustHaveExactlyOneAction(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad
description: "two actions in one step"
script:
  - update: 0.25
    pause: ticker
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one action per step")

	_, err = ParseScenario([]byte(`
name: bad
description: "empty step"
script:
  - {}
`))
	require.Error(t, err)
}

func TestParseScenario_SendRequiresTagAndName(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad
description: "send without name"
script:
  - send:
      tag: door
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag and name are required")
}

func TestParseScenario_StopRequiresTag(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: bad
description: "stop without tag"
script:
  - stop:
      children: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag is required")
}

func TestParseScenario_AssertionValidation(t *testing.T) {
	cases := map[string]string{
		"missing type": `
name: bad
description: "assertion with no type"
script:
  - update: 0.25
assertions:
  - counter: ticks
`,
		"unknown type": `
name: bad
description: "unknown assertion type"
script:
  - update: 0.25
assertions:
  - type: trace_sorted
`,
		"trace_contains without kind": `
name: bad
description: "contains needs a kind"
script:
  - update: 0.25
assertions:
  - type: trace_contains
`,
		"trace_order without kinds": `
name: bad
description: "order needs kinds"
script:
  - update: 0.25
assertions:
  - type: trace_order
`,
		"counter_equals without counter": `
name: bad
description: "counter_equals needs a counter"
script:
  - update: 0.25
assertions:
  - type: counter_equals
    value: 1
`,
		"tag_count without tag": `
name: bad
description: "tag_count needs a tag"
script:
  - update: 0.25
assertions:
  - type: tag_count
    count: 1
`,
	}
	for name, yaml := range cases {
		_, err := ParseScenario([]byte(yaml))
		assert.Error(t, err, name)
	}
}
