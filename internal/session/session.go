package session

import (
	"strings"
	"sync"

	ai "github.com/sashabaranov/go-openai"

	"github.com/joelfuller2016/deepseek-engineer/internal/core"
)

// trimKeepUsers is how many recent user-authored messages survive a trim in
// addition to the recent window.
const trimKeepUsers = 5

// Session is the ordered transcript of one conversation. The first message is
// always the system preamble; it survives every trim verbatim. All mutation
// goes through the session's lock so a concurrent owner stays safe, though
// the engine drives it from a single goroutine.
type Session struct {
	mu sync.RWMutex

	history          []ai.ChatCompletionMessage
	prompt           string
	maxMessages      int
	maxContextTokens int
}

func NewSession(prompt string, maxMessages, maxContextTokens int) *Session {
	return &Session{
		history: []ai.ChatCompletionMessage{
			{Role: ai.ChatMessageRoleSystem, Content: prompt},
		},
		prompt:           prompt,
		maxMessages:      maxMessages,
		maxContextTokens: maxContextTokens,
	}
}

// AddMessage appends to the end of the transcript. Messages are never mutated
// after append.
func (s *Session) AddMessage(msg ai.ChatCompletionMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msg)
}

// GetHistory returns a copy of the transcript.
func (s *Session) GetHistory() []ai.ChatCompletionMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]ai.ChatCompletionMessage, len(s.history))
	copy(history, s.history)
	return history
}

func (s *Session) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// TotalTokens approximates the token cost of the whole transcript.
func (s *Session) TotalTokens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, msg := range s.history {
		total += EstimateMessage(msg)
	}
	return total
}

// MaxContextTokens returns the fixed conversation token ceiling.
func (s *Session) MaxContextTokens() int {
	return s.maxContextTokens
}

// WouldExceed reports whether adding the given token count would overflow the
// context budget.
func (s *Session) WouldExceed(additionalTokens int) bool {
	return s.TotalTokens()+additionalTokens > s.maxContextTokens
}

// ContainsContent reports whether any message content includes the marker.
// Used to avoid re-adding a file that is already in context.
func (s *Session) ContainsContent(marker string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, msg := range s.history {
		if strings.Contains(msg.Content, marker) {
			return true
		}
	}
	return false
}

// Reset drops everything but a fresh system preamble.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = []ai.ChatCompletionMessage{
		{Role: ai.ChatMessageRoleSystem, Content: s.prompt},
	}
}

// Trim compacts the transcript once it grows past the message ceiling. The
// system preamble is always retained first; from the rest, the most recent
// ceiling-5 messages plus the most recent 5 user messages survive, original
// order preserved, duplicates removed. This is lossy: a surviving tool-result
// message can lose its originating assistant tool-call message. Returns
// whether anything was trimmed.
func (s *Session) Trim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) <= s.maxMessages {
		return false
	}

	rest := s.history[1:]

	recentStart := len(rest) - (s.maxMessages - trimKeepUsers)
	if recentStart < 0 {
		recentStart = 0
	}

	// Indices of the last trimKeepUsers user messages, oldest first
	var userIdx []int
	for i := len(rest) - 1; i >= 0 && len(userIdx) < trimKeepUsers; i-- {
		if rest[i].Role == ai.ChatMessageRoleUser {
			userIdx = append([]int{i}, userIdx...)
		}
	}

	keep := make(map[int]bool, s.maxMessages)
	for _, i := range userIdx {
		keep[i] = true
	}
	for i := recentStart; i < len(rest); i++ {
		keep[i] = true
	}

	kept := make([]ai.ChatCompletionMessage, 0, len(keep))
	for i := range rest {
		if keep[i] {
			kept = append(kept, rest[i])
		}
	}

	// The union can run one past the ceiling when all retained user
	// messages predate the recent window; drop the oldest until it fits.
	for len(kept)+1 > s.maxMessages {
		kept = kept[1:]
	}

	s.history = append(s.history[:1], kept...)
	core.GetLogger().Debugf("Trimmed conversation history to %d messages", len(s.history))
	return true
}
