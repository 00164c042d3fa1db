package memory

import (
	"context"
	"fmt"
)

// FoldEngine selects at most one trigger per invocation and, if one fires
// and has messages to fold, invokes the Summarizer and commits the result.
type FoldEngine struct {
	summarizer       *Summarizer
	chatSystemPrompt string
	estimator        TokenEstimator
}

// NewFoldEngine constructs a FoldEngine. estimator may be nil to disable
// the token trigger entirely.
func NewFoldEngine(summarizer *Summarizer, chatSystemPrompt string, estimator TokenEstimator) *FoldEngine {
	return &FoldEngine{summarizer: summarizer, chatSystemPrompt: chatSystemPrompt, estimator: estimator}
}

// ApplySummarizationIfNeeded evaluates triggers in priority order and
// applies at most one fold. State is mutated in place on a successful
// fold; on any Summarizer failure State is left byte-identical to its
// pre-fold value. It returns the chosen TriggerResult (Triggered=false
// when nothing fired) and an error only for an invariant violation, which
// is fatal.
func (f *FoldEngine) ApplySummarizationIfNeeded(ctx context.Context, s *State, p Policy) (TriggerResult, error) {
	tokenTr := checkToken(s, p, f.chatSystemPrompt, f.estimator)
	overflowTr := checkOverflow(s, p)
	safetyTr := checkSafety(s, p)

	chosen := chooseTrigger(tokenTr, overflowTr, safetyTr)
	if !chosen.Triggered {
		return chosen, nil
	}

	switch chosen.Reason {
	case ReasonOverflow:
		return f.applyOverflowFold(ctx, s, p, chosen)
	case ReasonSafety, ReasonToken:
		// Safety and the sufficient token policy share the same shape:
		// fold everything older than the newest KVerbatim messages, or
		// no-op if already at or below that floor.
		return f.applyFoldToFloor(ctx, s, p, chosen)
	default:
		return chosen, nil
	}
}

// applyOverflowFold folds the oldest messages into the summary once the
// window has grown past max_recent, keeping exactly the newest KVerbatim.
func (f *FoldEngine) applyOverflowFold(ctx context.Context, s *State, p Policy, chosen TriggerResult) (TriggerResult, error) {
	window := s.window
	excess := len(window) - p.MaxRecent()
	if excess < 0 {
		excess = 0
	}
	overflowPrefix := window[:excess]
	kept := window[excess:]

	var toFold []Message
	var keepFinal []Message
	if len(kept) > p.KVerbatim {
		dropSet := kept[:len(kept)-p.KVerbatim]
		keepFinal = kept[len(kept)-p.KVerbatim:]
		toFold = append(append([]Message{}, overflowPrefix...), dropSet...)
	} else {
		keepFinal = kept
		toFold = append([]Message{}, overflowPrefix...)
	}

	if len(toFold) == 0 {
		// Nothing to lose; truncate directly, no Summarizer call needed.
		s.setWindow(append([]Message{}, keepFinal...))
		return chosen, f.checkPostFoldInvariant(s, p)
	}

	before := s.summary
	updated, err := f.summarizer.Summarize(ctx, before, toFold)
	if err != nil {
		chosen.Details = fmt.Sprintf("%s; summarizer failed: %v", chosen.Details, err)
		return chosen, nil
	}

	s.setSummary(updated)
	s.setWindow(append([]Message{}, keepFinal...))
	return chosen, f.checkPostFoldInvariant(s, p)
}

// applyFoldToFloor folds every message older than the newest KVerbatim, or
// no-ops (while still reporting the trigger) if the window is already at
// or below that floor.
func (f *FoldEngine) applyFoldToFloor(ctx context.Context, s *State, p Policy, chosen TriggerResult) (TriggerResult, error) {
	window := s.window
	if len(window) <= p.KVerbatim {
		// No messages need folding; record the firing but make no call.
		return chosen, nil
	}

	toFold := window[:len(window)-p.KVerbatim]
	kept := window[len(window)-p.KVerbatim:]

	before := s.summary
	updated, err := f.summarizer.Summarize(ctx, before, toFold)
	if err != nil {
		chosen.Details = fmt.Sprintf("%s; summarizer failed: %v", chosen.Details, err)
		return chosen, nil
	}

	s.setSummary(updated)
	s.setWindow(append([]Message{}, kept...))
	return chosen, f.checkPostFoldInvariant(s, p)
}

// checkPostFoldInvariant enforces that the window never exceeds KVerbatim
// once a fold has run. A violation is an internal assertion failure and
// is always fatal.
func (f *FoldEngine) checkPostFoldInvariant(s *State, p Policy) error {
	if s.windowLen() > p.KVerbatim {
		return fmt.Errorf("%w: window length %d exceeds k_verbatim %d after fold", ErrInvariantViolation, s.windowLen(), p.KVerbatim)
	}
	return nil
}
