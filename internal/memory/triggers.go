package memory

import (
	"fmt"
)

// TokenEstimator is the pluggable token-counting collaborator the Token
// Trigger consults. Implementations live in internal/tokenest.
type TokenEstimator interface {
	// Estimate returns an approximate token count for the given messages.
	Estimate(messages []Message) (int, error)
	// ContextLimit is the provider's context window size in tokens.
	ContextLimit() int
}

// checkOverflow fires once the recent-message window has grown past
// max_recent.
func checkOverflow(s *State, p Policy) TriggerResult {
	n := s.windowLen()
	max := p.MaxRecent()
	if n > max {
		return TriggerResult{
			Triggered: true,
			Reason:    ReasonOverflow,
			Details:   fmt.Sprintf("len(recent_messages)=%d > %d", n, max),
		}
	}
	return noTrigger
}

// checkSafety fires every SafetyUserTurns user submissions, independent of
// window length, as insurance against conversations made of many short
// turns that never overflow the window.
func checkSafety(s *State, p Policy) TriggerResult {
	if p.SafetyUserTurns == 0 {
		return noTrigger
	}
	if s.userTurnCount > 0 && s.userTurnCount%p.SafetyUserTurns == 0 {
		return TriggerResult{
			Triggered: true,
			Reason:    ReasonSafety,
			Details:   fmt.Sprintf("user_turn_count=%d hits %d", s.userTurnCount, p.SafetyUserTurns),
		}
	}
	return noTrigger
}

// checkToken is a no-op (always not-triggered) when estimator is nil, so
// the token trigger can be disabled entirely by omitting an estimator.
// Estimator errors are also treated as not-triggered rather than surfaced,
// since a failed estimate shouldn't force a fold.
func checkToken(s *State, p Policy, chatSystemPrompt string, estimator TokenEstimator) TriggerResult {
	if estimator == nil {
		return noTrigger
	}

	prepared := buildChatContext(chatSystemPrompt, s)
	count, err := estimator.Estimate(prepared)
	if err != nil {
		return noTrigger
	}

	limit := estimator.ContextLimit()
	threshold := p.TokenBudgetRatio * float64(limit)
	if float64(count) > threshold {
		return TriggerResult{
			Triggered: true,
			Reason:    ReasonToken,
			Details:   fmt.Sprintf("estimated_tokens=%d > ratio(%.2f)*limit(%d)=%.0f", count, p.TokenBudgetRatio, limit, threshold),
		}
	}
	return noTrigger
}

// chooseTrigger is the priority selector: token beats overflow beats
// safety. Implemented as an ordered check to keep the ordering total and
// obvious across revisions.
func chooseTrigger(token, overflow, safety TriggerResult) TriggerResult {
	if token.Triggered {
		return token
	}
	if overflow.Triggered {
		return overflow
	}
	if safety.Triggered {
		return safety
	}
	return noTrigger
}
