package engine

import (
	"github.com/roach88/metronome/internal/message"
)

// messageQueue is the FIFO message buffer shared by the three delivery
// phases. It is owned by the frame-owner thread; no locking.
//
// A delivery pass visits the queue exactly its starting length, so
// messages requeued because their stage does not match the current phase
// are never re-examined within the same pass.
type messageQueue struct {
	messages []message.Message
}

func newMessageQueue() *messageQueue {
	return &messageQueue{
		messages: make([]message.Message, 0, 16),
	}
}

// push appends a message to the back of the queue.
func (q *messageQueue) push(m message.Message) {
	q.messages = append(q.messages, m)
}

// pop removes and returns the front message.
func (q *messageQueue) pop() (message.Message, bool) {
	if len(q.messages) == 0 {
		return message.Message{}, false
	}
	m := q.messages[0]
	// Nil out the slot so the backing array does not retain sender/data
	// references until reallocation.
	q.messages[0] = message.Message{}
	if len(q.messages) == 1 {
		q.messages = q.messages[:0]
	} else {
		q.messages = q.messages[1:]
	}
	return m, true
}

// len returns the number of queued messages.
func (q *messageQueue) len() int {
	return len(q.messages)
}

// clear drops every queued message. Teardown only.
func (q *messageQueue) clear() {
	q.messages = q.messages[:0]
}
