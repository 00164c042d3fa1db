package memory

import "strings"

// MemorySummaryPrefix is the literal header prepended to the summary when
// it is sent as its own system message.
const MemorySummaryPrefix = "MEMORY SUMMARY:\n"

// buildChatContext constructs the send-list for one LLM chat turn:
// the chat system prompt, then (if non-empty) the summary as a second
// system message, then the window verbatim and in order. No reordering,
// deduplication, or role rewriting.
func buildChatContext(chatSystemPrompt string, s *State) []Message {
	messages := make([]Message, 0, len(s.window)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: chatSystemPrompt})

	if strings.TrimSpace(s.summary) != "" {
		messages = append(messages, Message{
			Role:    RoleSystem,
			Content: MemorySummaryPrefix + s.summary,
		})
	}

	messages = append(messages, s.window...)
	return messages
}

// DefaultChatSystemPrompt is the bundled chat system prompt, reproduced
// verbatim from the original project's CHAT_SYSTEM_PROMPT so that the
// summary-consultation rules it imposes on the model match what shipped.
const DefaultChatSystemPrompt = `You are a helpful assistant.

You may receive a MEMORY SUMMARY that represents durable state from earlier conversation.
You may also receive recent verbatim messages.

RULES FOR USING MEMORY
- Treat MEMORY SUMMARY as the durable state. Recent messages are the most up-to-date local context.
- When the user asks about past context, preferences, plans, or "what I said" (recall questions),
  you MUST consult BOTH the MEMORY SUMMARY and the recent messages.
- If recent messages and MEMORY SUMMARY differ, you MUST mention both:
  - what is true recently, and
  - what was true earlier per memory,
  and explain the difference briefly (e.g., "Recently X, earlier we also discussed Y.").
- Do not ignore MEMORY SUMMARY in recall questions.

Keep responses concise and clear.
`
