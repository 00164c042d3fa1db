package tokenest

import (
	"testing"

	"github.com/AndreDVil/p05-chat-memory/internal/memory"
	"github.com/stretchr/testify/require"
)

func TestHeuristic_Estimate(t *testing.T) {
	h := NewHeuristic(0)
	require.Equal(t, DefaultContextLimit, h.ContextLimit())

	messages := []memory.Message{
		{Role: memory.RoleUser, Content: "Hello"},             // 5 chars -> 1
		{Role: memory.RoleAssistant, Content: "Let me help"},  // 11 chars -> 2
	}
	count, err := h.Estimate(messages)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestHeuristic_CustomLimit(t *testing.T) {
	h := NewHeuristic(4096)
	require.Equal(t, 4096, h.ContextLimit())
}

func TestTiktoken_FallsBackOnUnknownModel(t *testing.T) {
	tk := NewTiktoken("definitely-not-a-real-model-name", 0)
	count, err := tk.Estimate([]memory.Message{{Role: memory.RoleUser, Content: "Hello"}})
	require.NoError(t, err)
	require.Equal(t, 1, count) // heuristic: 5 chars / 4 = 1
}
