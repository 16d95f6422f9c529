package agent

import (
	"fmt"
	"strings"
)

// historyWindow caps how many lines are replayed into generation prompts.
// Older history is retained in full but not replayed.
const historyWindow = 10

// conversationMemory holds the dialogue lines an agent has observed, oldest
// first. Only spoken text is stored, never internal state.
type conversationMemory struct {
	lines []string
}

func (m *conversationMemory) add(speaker, text string) {
	m.lines = append(m.lines, fmt.Sprintf("%s: %s", speaker, text))
}

// window returns the most recent lines joined for prompt context.
func (m *conversationMemory) window() string {
	start := len(m.lines) - historyWindow
	if start < 0 {
		start = 0
	}
	return strings.Join(m.lines[start:], "\n")
}

// all returns a copy of the full history.
func (m *conversationMemory) all() []string {
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// clone returns an independent copy so a step can mutate scratch state and
// commit it atomically.
func (m *conversationMemory) clone() conversationMemory {
	return conversationMemory{lines: m.all()}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
