package memory

import (
	"context"
	"strings"
	"sync"
)

// ManagerConfig bundles everything Manager construction needs injected:
// Policy, chat system prompt (the summarizer system prompt is fixed
// internally, see summarizer.go), a Chat LLM client, a Summarizer LLM
// client (which may be the same concrete value), and an optional token
// estimator.
type ManagerConfig struct {
	Policy           Policy
	ChatSystemPrompt string
	ChatLLM          LLM
	SummarizerLLM    LLM
	SummarizerModel  string
	ChatModel        string
	// Estimator is optional; nil disables the token trigger.
	Estimator TokenEstimator
}

// Manager is the turn coordinator: it exclusively owns State and is the
// sole entry point for conversational turns. A Manager serves exactly one
// conversation; for multi-session use, construct one Manager per session.
type Manager struct {
	mu sync.Mutex

	policy           Policy
	chatSystemPrompt string
	chatLLM          LLM
	chatModel        string
	fold             *FoldEngine

	state *State
}

// NewManager validates cfg.Policy and constructs a Manager with empty
// State. Returns ErrInvalidPolicy on a bad Policy; this is a fatal
// configuration error at construction time.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if err := cfg.Policy.validate(); err != nil {
		return nil, err
	}

	summarizer := NewSummarizer(cfg.SummarizerLLM, cfg.SummarizerModel)
	prompt := cfg.ChatSystemPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultChatSystemPrompt
	}

	return &Manager{
		policy:           cfg.Policy,
		chatSystemPrompt: prompt,
		chatLLM:          cfg.ChatLLM,
		chatModel:        cfg.ChatModel,
		fold:             NewFoldEngine(summarizer, prompt, cfg.Estimator),
		state:            newState(),
	}, nil
}

// SubmitUser is the sole conversational operation. Per turn: increment the
// user-turn counter, run the fold engine against the pre-input state,
// append the user input, build the send-list, call the chat LLM, append
// the reply, and return it alongside the fold outcome.
//
// The fold is evaluated before the new user message is appended so the
// current turn's input is never itself a candidate for folding.
func (m *Manager) SubmitUser(ctx context.Context, input string) (string, TriggerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.incrementUserTurns()

	foldResult, err := m.fold.ApplySummarizationIfNeeded(ctx, m.state, m.policy)
	if err != nil {
		// Invariant violation: fatal. The Manager's State is considered
		// corrupt; propagate so the caller discards this Manager.
		return "", foldResult, err
	}

	m.state.append(Message{Role: RoleUser, Content: input})

	sendList := buildChatContext(m.chatSystemPrompt, m.state)

	reply, err := m.chatLLM.Complete(ctx, sendList, m.chatModel, 0.7)
	if err != nil {
		// Upstream error: propagated to the caller; retries are a caller
		// concern.
		return "", foldResult, err
	}

	// A malformed/empty assistant reply is treated as an empty string
	// rather than surfaced as an error.
	m.state.append(Message{Role: RoleAssistant, Content: reply})

	return reply, foldResult, nil
}

// SnapshotSummary returns the current summary for display/debugging.
func (m *Manager) SnapshotSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.summary
}

// SnapshotWindow returns a read-only copy of the recent-message window.
func (m *Manager) SnapshotWindow() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.cloneWindow()
}

// Policy returns the Manager's immutable configuration.
func (m *Manager) Policy() Policy {
	return m.policy
}
