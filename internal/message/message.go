// Package message defines the tag-addressed message envelope and the
// interception capability used by the scheduler's delivery phases.
package message

import (
	"errors"
	"fmt"

	"github.com/roach88/metronome/internal/tag"
)

// Stage selects the frame phase at which a message becomes eligible for
// delivery. The zero value is treated as StageAfterRoutines by Engine.Send.
type Stage int

const (
	// StageBeforeRoutines delivers before the execution phase.
	StageBeforeRoutines Stage = iota + 1
	// StageAfterRoutines delivers after the execution phase.
	StageAfterRoutines
	// StageSoonestPossible is eligible in every delivery pass, including
	// the terminal pass that runs after additions are applied.
	StageSoonestPossible
)

// String returns the stage name for logs and traces.
func (s Stage) String() string {
	switch s {
	case StageBeforeRoutines:
		return "before_routines"
	case StageAfterRoutines:
		return "after_routines"
	case StageSoonestPossible:
		return "soonest_possible"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// valid reports whether s is one of the defined stages.
func (s Stage) valid() bool {
	return s >= StageBeforeRoutines && s <= StageSoonestPossible
}

// ErrNilSender is wrapped when a message is built without a sender.
var ErrNilSender = errors.New("message sender must not be nil")

// ErrBlankName is wrapped when a message is built without a name.
var ErrBlankName = errors.New("message name must not be blank")

// Message is an addressed, staged envelope. Messages are queued by the
// scheduler, delivered at most once per matching phase, then discarded.
type Message struct {
	// ReceiverTag addresses the registry bucket to fan out to.
	ReceiverTag string
	// Name identifies the message for interceptors.
	Name string
	// Sender is the originating object. Never nil.
	Sender any
	// Data is an optional payload.
	Data any
	// Stage is the delivery stage.
	Stage Stage
}

// New validates and builds a message.
//
// Validation failures (malformed receiver tag, blank name, nil sender,
// unknown stage) are programmer errors and are returned, never coerced.
func New(receiverTag, name string, sender, data any, stage Stage) (Message, error) {
	if err := tag.Validate(receiverTag); err != nil {
		return Message{}, fmt.Errorf("receiver tag: %w", err)
	}
	if name == "" {
		return Message{}, ErrBlankName
	}
	if sender == nil {
		return Message{}, ErrNilSender
	}
	if !stage.valid() {
		return Message{}, fmt.Errorf("unknown delivery stage %d", int(stage))
	}
	return Message{
		ReceiverTag: receiverTag,
		Name:        name,
		Sender:      sender,
		Data:        data,
		Stage:       stage,
	}, nil
}

// Interceptor is the message-interception capability. Delivery fans out to
// every registered object under the receiver tag that implements it.
type Interceptor interface {
	Intercept(Message)
}
