package llm

import (
	"context"
	"fmt"

	ai "github.com/sashabaranov/go-openai"

	"github.com/joelfuller2016/deepseek-engineer/internal/config"
	"github.com/joelfuller2016/deepseek-engineer/internal/core"
	"github.com/joelfuller2016/deepseek-engineer/internal/tools"
)

// Streamer is the incremental event stream of one model invocation.
// Satisfied by go-openai's ChatCompletionStream and by test doubles.
type Streamer interface {
	Recv() (ai.ChatCompletionStreamResponse, error)
	Close() error
}

// Client wraps the OpenAI-compatible chat API with the configured model,
// endpoint, and the fixed tool schema.
type Client struct {
	api *ai.Client
	cfg *config.Configuration
}

func NewClient(cfg *config.Configuration) *Client {
	apiConfig := ai.DefaultConfig(cfg.API.Key)
	apiConfig.BaseURL = cfg.API.BaseURL
	return &Client{
		api: ai.NewClientWithConfig(apiConfig),
		cfg: cfg,
	}
}

// Stream opens a streaming completion over the given transcript. The fixed
// tool schema is declared on every request; the caller decides whether to
// act on returned tool calls.
func (c *Client) Stream(ctx context.Context, history []ai.ChatCompletionMessage) (Streamer, error) {
	req := ai.ChatCompletionRequest{
		Model:               c.cfg.Model.Model,
		Messages:            history,
		Tools:               tools.Definitions(),
		MaxCompletionTokens: c.cfg.Model.MaxCompletionTokens,
		Temperature:         c.cfg.Model.Temperature,
		Stream:              true,
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
	return stream, nil
}
