package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildChatContext_NoSummary(t *testing.T) {
	s := newState()
	s.append(Message{Role: RoleUser, Content: "hi"})

	got := buildChatContext("SYS", s)

	require.Len(t, got, 2)
	require.Equal(t, Message{Role: RoleSystem, Content: "SYS"}, got[0])
	require.Equal(t, Message{Role: RoleUser, Content: "hi"}, got[1])
}

func TestBuildChatContext_WithSummary(t *testing.T) {
	// Scenario 6 (spec.md §8): Summary="S", Window=[u:"a", a:"b"], submit "c".
	s := newState()
	s.setSummary("S")
	s.append(Message{Role: RoleUser, Content: "a"})
	s.append(Message{Role: RoleAssistant, Content: "b"})
	s.append(Message{Role: RoleUser, Content: "c"})

	got := buildChatContext("chat-prompt", s)

	require.Len(t, got, 5)
	require.Equal(t, Message{Role: RoleSystem, Content: "chat-prompt"}, got[0])
	require.Equal(t, Message{Role: RoleSystem, Content: "MEMORY SUMMARY:\nS"}, got[1])
	require.Equal(t, Message{Role: RoleUser, Content: "a"}, got[2])
	require.Equal(t, Message{Role: RoleAssistant, Content: "b"}, got[3])
	require.Equal(t, Message{Role: RoleUser, Content: "c"}, got[4])
}

func TestBuildChatContext_BlankSummaryOmitted(t *testing.T) {
	s := newState()
	s.setSummary("   \n\t  ")
	got := buildChatContext("SYS", s)
	require.Len(t, got, 1, "whitespace-only summary must not produce a second system message")
}
