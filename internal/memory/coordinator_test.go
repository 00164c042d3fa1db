package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type scriptedChatLLM struct {
	replies []string
	calls   [][]Message
	err     error
}

func (c *scriptedChatLLM) Complete(ctx context.Context, messages []Message, model string, temperature float64) (string, error) {
	c.calls = append(c.calls, messages)
	if c.err != nil {
		return "", c.err
	}
	idx := len(c.calls) - 1
	if idx < len(c.replies) {
		return c.replies[idx], nil
	}
	return "", nil
}

func newTestManager(t *testing.T, p Policy, chat *scriptedChatLLM, summarizer LLM) *Manager {
	t.Helper()
	m, err := NewManager(ManagerConfig{
		Policy:           p,
		ChatSystemPrompt: "chat-prompt",
		ChatLLM:          chat,
		SummarizerLLM:    summarizer,
		ChatModel:        "chat-model",
		SummarizerModel:  "summarizer-model",
	})
	require.NoError(t, err)
	return m
}

func TestManager_NewManager_RejectsInvalidPolicy(t *testing.T) {
	_, err := NewManager(ManagerConfig{Policy: Policy{KVerbatim: 0}})
	require.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestManager_Scenario1_NoTrigger(t *testing.T) {
	p := policyFor(2, 2, 10)
	chat := &scriptedChatLLM{replies: []string{"hello back"}}
	m := newTestManager(t, p, chat, &fakeLLM{})

	reply, fold, err := m.SubmitUser(context.Background(), "hi")

	require.NoError(t, err)
	require.False(t, fold.Triggered)
	require.Equal(t, "hello back", reply)

	window := m.SnapshotWindow()
	require.Equal(t, []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello back"},
	}, window)
	require.Equal(t, "", m.SnapshotSummary())

	// P6: first message is the chat system prompt; last is the current
	// turn's user input; not duplicated.
	sent := chat.calls[0]
	require.Equal(t, Message{Role: RoleSystem, Content: "chat-prompt"}, sent[0])
	require.Equal(t, Message{Role: RoleUser, Content: "hi"}, sent[len(sent)-1])
	count := 0
	for _, msg := range sent {
		if msg == (Message{Role: RoleUser, Content: "hi"}) {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestManager_P1_WindowNeverExceedsMaxRecent(t *testing.T) {
	p := policyFor(2, 2, 0) // max_recent = 4
	chat := &scriptedChatLLM{}
	m := newTestManager(t, p, chat, &fakeLLM{})

	for i := 0; i < 20; i++ {
		_, _, err := m.SubmitUser(context.Background(), fmt.Sprintf("turn-%d", i))
		require.NoError(t, err)
		require.LessOrEqual(t, len(m.SnapshotWindow()), p.MaxRecent())
	}
}

func TestManager_P3_MonotoneCounter(t *testing.T) {
	p := policyFor(2, 2, 0)
	chat := &scriptedChatLLM{}
	m := newTestManager(t, p, chat, &fakeLLM{})

	for i := 1; i <= 5; i++ {
		_, _, err := m.SubmitUser(context.Background(), "x")
		require.NoError(t, err)
		require.Equal(t, i, m.state.userTurnCount)
	}
}

func TestManager_P5_AtMostOneSummarizerCallPerSubmit(t *testing.T) {
	p := policyFor(2, 2, 0)
	chat := &scriptedChatLLM{}
	summarizer := &fakeLLM{}
	m := newTestManager(t, p, chat, summarizer)

	for i := 0; i < 6; i++ {
		_, _, err := m.SubmitUser(context.Background(), fmt.Sprintf("turn-%d", i))
		require.NoError(t, err)
		require.LessOrEqual(t, len(summarizer.calls), 1)
		summarizer.calls = nil
	}
}

func TestManager_ChatLLMErrorPropagates(t *testing.T) {
	p := policyFor(2, 2, 0)
	chat := &scriptedChatLLM{err: errors.New("upstream down")}
	m := newTestManager(t, p, chat, &fakeLLM{})

	reply, _, err := m.SubmitUser(context.Background(), "hi")
	require.Error(t, err)
	require.Equal(t, "", reply)

	// The user message from the failed turn is still appended
	// (spec.md §4.7 step 4 already ran before the chat call).
	require.Len(t, m.SnapshotWindow(), 1)
}

func TestManager_UserInputNeverFoldedOnItsOwnTurn(t *testing.T) {
	// The fold check runs before the current turn's user message is
	// appended, so it can never be a candidate for the fold that fires on
	// the same call.
	p := policyFor(1, 0, 0) // max_recent = 1: aggressive overflow
	chat := &scriptedChatLLM{}
	summarizer := &fakeLLM{}
	m := newTestManager(t, p, chat, summarizer)

	_, _, err := m.SubmitUser(context.Background(), "first")
	require.NoError(t, err)
	_, _, err = m.SubmitUser(context.Background(), "second")
	require.NoError(t, err)

	for _, call := range summarizer.calls {
		for _, msg := range call {
			require.NotEqual(t, "second", msg.Content)
		}
	}
}
