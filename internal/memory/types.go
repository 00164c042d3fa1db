// Package memory implements the stateful chat memory manager: a bounded
// window of verbatim recent turns plus a durable summary artifact that
// absorbs older context under a small set of trigger policies.
package memory

import "errors"

// Role identifies who produced a Message. The set is closed.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single immutable turn in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FoldReason identifies which trigger caused a fold.
type FoldReason string

const (
	ReasonToken    FoldReason = "token"
	ReasonOverflow FoldReason = "overflow"
	ReasonSafety   FoldReason = "safety"
)

// TriggerResult reports whether a fold trigger fired and, if so, why.
type TriggerResult struct {
	Triggered bool       `json:"triggered"`
	Reason    FoldReason `json:"reason,omitempty"`
	Details   string     `json:"details,omitempty"`
}

// noTrigger is the canonical not-triggered result.
var noTrigger = TriggerResult{Triggered: false}

// Sentinel errors returned by this package.
var (
	// ErrInvalidPolicy is returned when a Policy fails validation at
	// construction time (Configuration error).
	ErrInvalidPolicy = errors.New("memory: invalid policy")

	// ErrInvariantViolation marks an internal assertion failure after a
	// fold. A Manager that returns this is considered corrupt; callers
	// should discard it.
	ErrInvariantViolation = errors.New("memory: post-fold invariant violated")
)
