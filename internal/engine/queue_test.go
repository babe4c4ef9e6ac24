package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/metronome/internal/message"
)

func msg(t *testing.T, name string) message.Message {
	t.Helper()
	m, err := message.New("rx", name, "test", nil, message.StageAfterRoutines)
	require.NoError(t, err)
	return m
}

func TestMessageQueue_FIFO(t *testing.T) {
	q := newMessageQueue()
	q.push(msg(t, "a"))
	q.push(msg(t, "b"))
	q.push(msg(t, "c"))
	require.Equal(t, 3, q.len())

	for _, want := range []string{"a", "b", "c"} {
		m, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, want, m.Name)
	}
	assert.Equal(t, 0, q.len())
}

func TestMessageQueue_PopEmpty(t *testing.T) {
	q := newMessageQueue()
	_, ok := q.pop()
	assert.False(t, ok)
}

func TestMessageQueue_RequeueGoesToBack(t *testing.T) {
	q := newMessageQueue()
	q.push(msg(t, "a"))
	q.push(msg(t, "b"))

	m, ok := q.pop()
	require.True(t, ok)
	q.push(m) // requeue "a"

	next, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "b", next.Name)
}

func TestMessageQueue_Clear(t *testing.T) {
	q := newMessageQueue()
	q.push(msg(t, "a"))
	q.clear()
	assert.Equal(t, 0, q.len())
}
