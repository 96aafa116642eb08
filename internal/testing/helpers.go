package testing

import (
	"time"

	"github.com/joelfuller2016/deepseek-engineer/internal/config"
)

// DefaultTestConfig returns a minimal configuration for testing
func DefaultTestConfig() *config.Configuration {
	return &config.Configuration{
		API: &config.APIConfig{
			Key:     "test-key",
			BaseURL: "http://localhost:0",
			Timeout: 5 * time.Second,
		},
		Model: &config.ModelConfig{
			Model:               "test/model",
			MaxCompletionTokens: 1024,
			Temperature:         0.7,
		},
		Budget: &config.BudgetConfig{
			MaxContextTokens: 50000,
			MaxFileTokens:    8000,
			MaxFilesPerAdd:   20,
		},
		Session: &config.SessionConfig{
			MaxMessages: 30,
			Prompt:      "You are a test engineer.",
		},
	}
}
