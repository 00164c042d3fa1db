package memory

import "fmt"

// Default policy values, grounded on the original Python dataclass defaults
// (k_verbatim=6, b_buffer=4, token_budget_ratio=0.70, safety_user_turns=10).
const (
	DefaultKVerbatim        = 6
	DefaultBBuffer          = 4
	DefaultTokenBudgetRatio = 0.70
	DefaultSafetyUserTurns  = 10
)

// Policy is the immutable configuration a Manager is constructed with.
type Policy struct {
	// KVerbatim is the number of newest messages always kept verbatim
	// after a fold. Must be >= 1.
	KVerbatim int
	// BBuffer is the slack above KVerbatim the window may hold before an
	// overflow fold fires. Must be >= 0.
	BBuffer int
	// TokenBudgetRatio is the fraction of the estimator's context limit
	// that the token trigger fires above. Must be in (0, 1].
	TokenBudgetRatio float64
	// SafetyUserTurns is the period, in user turns, of the safety fold.
	// Zero disables the safety trigger entirely.
	SafetyUserTurns int
}

// NewPolicy validates and returns a Policy, or ErrInvalidPolicy.
func NewPolicy(kVerbatim, bBuffer int, tokenBudgetRatio float64, safetyUserTurns int) (Policy, error) {
	p := Policy{
		KVerbatim:        kVerbatim,
		BBuffer:          bBuffer,
		TokenBudgetRatio: tokenBudgetRatio,
		SafetyUserTurns:  safetyUserTurns,
	}
	if err := p.validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// DefaultPolicy returns the policy the original minimal implementation
// shipped with.
func DefaultPolicy() Policy {
	p, err := NewPolicy(DefaultKVerbatim, DefaultBBuffer, DefaultTokenBudgetRatio, DefaultSafetyUserTurns)
	if err != nil {
		// Defaults are known-valid; a failure here is a programming error.
		panic(err)
	}
	return p
}

func (p Policy) validate() error {
	if p.KVerbatim < 1 {
		return fmt.Errorf("%w: k_verbatim must be >= 1, got %d", ErrInvalidPolicy, p.KVerbatim)
	}
	if p.BBuffer < 0 {
		return fmt.Errorf("%w: b_buffer must be >= 0, got %d", ErrInvalidPolicy, p.BBuffer)
	}
	if p.TokenBudgetRatio <= 0 || p.TokenBudgetRatio > 1 {
		return fmt.Errorf("%w: token_budget_ratio must be in (0,1], got %v", ErrInvalidPolicy, p.TokenBudgetRatio)
	}
	if p.SafetyUserTurns < 0 {
		return fmt.Errorf("%w: safety_user_turns must be >= 0, got %d", ErrInvalidPolicy, p.SafetyUserTurns)
	}
	return nil
}

// MaxRecent is the derived bound on the window: KVerbatim + BBuffer.
func (p Policy) MaxRecent() int {
	return p.KVerbatim + p.BBuffer
}
