// Command chatmem is the REPL driver for the stateful chat memory manager.
// It owns terminal I/O and the /memory and /exit commands, and calls into
// internal/memory for every invariant-bearing operation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/AndreDVil/p05-chat-memory/internal/llm"
	"github.com/AndreDVil/p05-chat-memory/internal/memory"
	"github.com/AndreDVil/p05-chat-memory/internal/tokenest"
)

var (
	youStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	aiStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	debugStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	chatModel := envOr("CHAT_MODEL", "gpt-4.1-mini")
	summarizerModel := envOr("SUMMARIZER_MODEL", "gpt-4.1-mini")
	baseURL := os.Getenv("LLM_BASE_URL")
	apiKey := os.Getenv("LLM_API_KEY")

	chatClient := llm.NewOpenAIClient(baseURL, apiKey)

	policy := loadPolicyFromEnv()

	var estimator memory.TokenEstimator
	if envBool("ENABLE_TOKEN_TRIGGER", false) {
		estimator = tokenest.NewTiktoken(chatModel, tokenest.DefaultContextLimit)
	}

	manager, err := memory.NewManager(memory.ManagerConfig{
		Policy:          policy,
		ChatLLM:         chatClient,
		SummarizerLLM:   chatClient,
		ChatModel:       chatModel,
		SummarizerModel: summarizerModel,
		Estimator:       estimator,
	})
	if err != nil {
		log.Fatalf("invalid memory policy: %v", err)
	}

	fmt.Println("Stateful Chat Memory Manager")
	fmt.Println("Type /memory to print the summary, /exit to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print(youStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(text)

		if lower == "/memory" {
			printMemory(manager)
			continue
		}
		if lower == "/exit" || lower == "exit" || lower == "quit" {
			break
		}
		if text == "" {
			continue
		}

		reply, fold, err := manager.SubmitUser(ctx, text)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("error: %v", err)))
			continue
		}

		fmt.Println(aiStyle.Render("assistant> ") + reply)
		fmt.Println()

		if fold.Triggered {
			fmt.Println(debugStyle.Render(fmt.Sprintf("[summarization triggered] reason=%s details=%s", fold.Reason, fold.Details)))
			fmt.Println()
		}
	}
}

func printMemory(m *memory.Manager) {
	fmt.Println("----- MEMORY SUMMARY (current state) -----")
	summary := m.SnapshotSummary()
	if summary == "" {
		summary = "(empty)"
	}
	fmt.Println(summary)
	fmt.Println("------------------------------------------")
	fmt.Println()
}

func loadPolicyFromEnv() memory.Policy {
	k := envInt("K_VERBATIM", memory.DefaultKVerbatim)
	b := envInt("B_BUFFER", memory.DefaultBBuffer)
	ratio := envFloat("TOKEN_BUDGET_RATIO", memory.DefaultTokenBudgetRatio)
	safety := envInt("SAFETY_USER_TURNS", memory.DefaultSafetyUserTurns)

	p, err := memory.NewPolicy(k, b, ratio, safety)
	if err != nil {
		log.Printf("invalid policy from environment (%v); falling back to defaults", err)
		return memory.DefaultPolicy()
	}
	return p
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}
