package routine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/metronome/internal/message"
)

func TestOnce(t *testing.T) {
	calls := 0
	r, err := Once(func() { calls++ })
	require.NoError(t, err)

	r.Update(1)
	r.Update(1)

	assert.Equal(t, 1, calls)
	assert.False(t, r.Active())
}

func TestDo(t *testing.T) {
	calls := 0
	r, err := Do(0, 3, func(float64) { calls++ })
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		r.Update(1)
	}

	assert.Equal(t, 3, calls)
	assert.False(t, r.Active())
}

func TestDo_BadTiming(t *testing.T) {
	_, err := Do(-1, 1, func(float64) {})
	assert.ErrorIs(t, err, ErrInvalidTiming)
}

func mustMessage(t *testing.T, receiverTag, name string) message.Message {
	t.Helper()
	m, err := message.New(receiverTag, name, "test", nil, message.StageAfterRoutines)
	require.NoError(t, err)
	return m
}

func TestWaitForMessage_Match(t *testing.T) {
	var got message.Message
	matches, failures := 0, 0
	r, err := WaitForMessage("door", "open", 10,
		func(m message.Message) { matches++; got = m },
		OnFailure(func() { failures++ }),
	)
	require.NoError(t, err)
	assert.Contains(t, r.Tags(), "door")

	r.Update(0.1)
	r.Intercept(mustMessage(t, "door", "open"))
	r.Update(0.1)

	assert.Equal(t, 1, matches)
	assert.Equal(t, "open", got.Name)
	assert.Equal(t, 0, failures)
	assert.False(t, r.Active())
}

func TestWaitForMessage_IgnoresOtherNames(t *testing.T) {
	matches := 0
	r, err := WaitForMessage("door", "open", 10,
		func(message.Message) { matches++ })
	require.NoError(t, err)

	r.Update(0.1)
	r.Intercept(mustMessage(t, "door", "close"))
	r.Update(0.1)

	assert.Equal(t, 0, matches)
	assert.True(t, r.Active())
}

func TestWaitForMessage_MatchesOnce(t *testing.T) {
	matches := 0
	r, err := WaitForMessage("door", "open", 10,
		func(message.Message) { matches++ })
	require.NoError(t, err)

	r.Update(0.1)
	r.Intercept(mustMessage(t, "door", "open"))
	r.Intercept(mustMessage(t, "door", "open"))

	assert.Equal(t, 1, matches)
}

func TestWaitForMessage_Timeout(t *testing.T) {
	failures := 0
	r, err := WaitForMessage("door", "open", 0.2,
		func(message.Message) {},
		OnFailure(func() { failures++ }),
	)
	require.NoError(t, err)

	r.Update(0.1)
	r.Update(0.1)

	assert.Equal(t, 1, failures, "timing out unmatched is reported as failure")
	assert.False(t, r.Active())
}

func TestWaitForMessage_BadTimeout(t *testing.T) {
	_, err := WaitForMessage("door", "open", -1, nil)
	assert.ErrorIs(t, err, ErrInvalidTiming)
}

func TestWaitUntil_ConditionMet(t *testing.T) {
	ready := false
	failures := 0
	r, err := WaitUntil(func() bool { return ready }, 10,
		OnFailure(func() { failures++ }))
	require.NoError(t, err)

	r.Update(0.1)
	assert.True(t, r.Active())

	ready = true
	r.Update(0.1)
	r.Update(0.1)

	assert.Equal(t, 0, failures)
	assert.False(t, r.Active())
}

func TestWaitUntil_Timeout(t *testing.T) {
	failures := 0
	r, err := WaitUntil(func() bool { return false }, 0.2,
		OnFailure(func() { failures++ }))
	require.NoError(t, err)

	r.Update(0.1)
	r.Update(0.1)

	assert.Equal(t, 1, failures)
	assert.False(t, r.Active())
}
