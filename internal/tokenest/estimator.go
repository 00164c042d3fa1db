// Package tokenest provides pluggable token-estimation implementations of
// memory.TokenEstimator: the token-budget trigger treats token counting as
// a policy hook, so the exact counter is swappable.
package tokenest

import (
	"fmt"

	"github.com/AndreDVil/p05-chat-memory/internal/memory"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultContextLimit is used when a caller doesn't know the provider's
// true context window; 128k matches common current-generation models.
const DefaultContextLimit = 128000

// charsPerToken is the heuristic conversion ratio: roughly 4 characters
// per token.
const charsPerToken = 4

// Heuristic is a zero-dependency token estimator: approximately 4
// characters per token. Always available as a fallback.
type Heuristic struct {
	contextLimit int
}

// NewHeuristic constructs a Heuristic estimator with the given context
// limit. A non-positive limit falls back to DefaultContextLimit.
func NewHeuristic(contextLimit int) *Heuristic {
	if contextLimit <= 0 {
		contextLimit = DefaultContextLimit
	}
	return &Heuristic{contextLimit: contextLimit}
}

// Estimate implements memory.TokenEstimator.
func (h *Heuristic) Estimate(messages []memory.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / charsPerToken
	}
	return total, nil
}

// ContextLimit implements memory.TokenEstimator.
func (h *Heuristic) ContextLimit() int {
	return h.contextLimit
}

// Tiktoken is a real BPE-based token estimator backed by
// github.com/pkoukk/tiktoken-go, for callers that want accuracy closer to
// the provider's actual tokenizer than the 4-char heuristic affords.
type Tiktoken struct {
	enc          *tiktoken.Tiktoken
	contextLimit int
	fallback     *Heuristic
}

// NewTiktoken constructs a Tiktoken estimator for the given model name. If
// the encoding for model cannot be loaded, construction does not fail;
// instead Estimate transparently falls back to the Heuristic, matching the
// defensive pattern used for token counters elsewhere in the ecosystem
// (construction failures shouldn't take down a caller that only wanted a
// nicer number).
func NewTiktoken(model string, contextLimit int) *Tiktoken {
	if contextLimit <= 0 {
		contextLimit = DefaultContextLimit
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc = nil
	}
	return &Tiktoken{enc: enc, contextLimit: contextLimit, fallback: NewHeuristic(contextLimit)}
}

// Estimate implements memory.TokenEstimator.
func (t *Tiktoken) Estimate(messages []memory.Message) (int, error) {
	if t.enc == nil {
		return t.fallback.Estimate(messages)
	}
	total := 0
	for _, m := range messages {
		tokens := t.enc.Encode(m.Content, nil, nil)
		total += len(tokens)
		// Role and message-framing overhead, per the rough
		// per-message accounting chat APIs use.
		total += 4
		if total < 0 {
			return 0, fmt.Errorf("tokenest: overflow while counting tokens")
		}
	}
	return total, nil
}

// ContextLimit implements memory.TokenEstimator.
func (t *Tiktoken) ContextLimit() int {
	return t.contextLimit
}
