package session

import (
	"encoding/json"
	"math"
	"strings"

	ai "github.com/sashabaranov/go-openai"
)

// CharsPerToken is the character-to-token ratio used by the estimator.
// This is an approximation, not a tokenizer.
const CharsPerToken = 4

// TruncationMarker is appended to content cut by Truncate.
const TruncationMarker = "\n\n... [Content truncated due to token limit]"

// EstimateTokens approximates the token cost of text: length over
// CharsPerToken with a 10% safety buffer, rounded up. Empty text costs 0.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / CharsPerToken * 1.1))
}

// EstimateMessage approximates the token cost of a message: its content plus,
// for assistant messages carrying tool calls, the serialized calls.
func EstimateMessage(msg ai.ChatCompletionMessage) int {
	total := EstimateTokens(msg.Content)
	if len(msg.ToolCalls) > 0 {
		if raw, err := json.Marshal(msg.ToolCalls); err == nil {
			total += EstimateTokens(string(raw))
		}
	}
	return total
}

// Truncate cuts content down to roughly maxTokens, preferring a line boundary
// when one falls within the last 20% of the cut region, and appends
// TruncationMarker. Content already under the limit, or already ending in the
// marker, is returned unchanged, so re-truncating output is a no-op.
func Truncate(content string, maxTokens int) string {
	if EstimateTokens(content) <= maxTokens {
		return content
	}
	if strings.HasSuffix(content, TruncationMarker) {
		return content
	}

	charLimit := maxTokens * CharsPerToken
	if charLimit > len(content) {
		charLimit = len(content)
	}
	truncated := content[:charLimit]

	// Prefer a line boundary near the end of the cut region
	if lastNewline := strings.LastIndexByte(truncated, '\n'); lastNewline > int(float64(charLimit)*0.8) {
		truncated = truncated[:lastNewline]
	}

	return truncated + TruncationMarker
}
