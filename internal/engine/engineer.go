package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	ai "github.com/sashabaranov/go-openai"

	"github.com/joelfuller2016/deepseek-engineer/internal/config"
	"github.com/joelfuller2016/deepseek-engineer/internal/core"
	"github.com/joelfuller2016/deepseek-engineer/internal/fileops"
	"github.com/joelfuller2016/deepseek-engineer/internal/llm"
	"github.com/joelfuller2016/deepseek-engineer/internal/session"
	"github.com/joelfuller2016/deepseek-engineer/internal/tools"
)

// Completer opens one streaming model invocation over a transcript.
// Implemented by llm.Client; tests substitute scripted streams.
type Completer interface {
	Stream(ctx context.Context, history []ai.ChatCompletionMessage) (llm.Streamer, error)
}

// UI receives display events during a turn. Rendering is the terminal
// layer's concern; the engine only reports what is happening.
type UI interface {
	// StreamStarted fires before each model invocation; followUp marks the
	// post-tool-execution wrap-up call.
	StreamStarted(followUp bool)
	// Reasoning receives chain-of-thought fragments, display-only.
	Reasoning(chunk string)
	// Content receives answer-text fragments as they stream.
	Content(chunk string)
	// ToolBatchStarted fires once per turn when tool calls will execute.
	ToolBatchStarted(count int)
	// ToolCallStarted fires before each individual tool call.
	ToolCallStarted(name string)
	// Notice reports session housekeeping such as history trimming.
	Notice(text string)
}

// Engineer drives one conversation: it owns the session transcript and runs
// the user-turn protocol against the model and the tool dispatcher. One turn
// is fully processed before the next user input is accepted; tool calls
// execute strictly sequentially in arrival order.
type Engineer struct {
	cfg        *config.Configuration
	sess       *session.Session
	client     Completer
	dispatcher *tools.Dispatcher
	ui         UI
}

func NewEngineer(cfg *config.Configuration, sess *session.Session, client Completer, dispatcher *tools.Dispatcher, ui UI) *Engineer {
	return &Engineer{
		cfg:        cfg,
		sess:       sess,
		client:     client,
		dispatcher: dispatcher,
		ui:         ui,
	}
}

// Session exposes the owned transcript for queries such as token usage.
func (e *Engineer) Session() *session.Session {
	return e.sess
}

// RunTurn processes one user turn: budget check, model invocation, tool
// execution, and the follow-up narrative response. A transport fault aborts
// the turn only; prior history stays intact and the session continues.
func (e *Engineer) RunTurn(ctx context.Context, userInput string) error {
	if e.sess.WouldExceed(session.EstimateTokens(userInput)) {
		e.ui.Notice("Token limit approaching, trimming conversation history")
		e.sess.Trim()
	}

	e.sess.AddMessage(ai.ChatCompletionMessage{
		Role:    ai.ChatMessageRoleUser,
		Content: userInput,
	})
	if e.sess.Trim() {
		e.ui.Notice(fmt.Sprintf("Trimmed conversation history to %d messages", e.sess.MessageCount()))
	}

	response, err := e.invoke(ctx, false)
	if err != nil {
		return err
	}

	if len(response.ToolCalls) == 0 {
		e.sess.AddMessage(response)
		return nil
	}

	// The assistant turn goes in first, content absent, so every tool
	// result that follows references a recorded call
	e.sess.AddMessage(response)

	e.ui.ToolBatchStarted(len(response.ToolCalls))
	for _, call := range response.ToolCalls {
		e.ui.ToolCallStarted(call.Function.Name)
		result := e.dispatcher.Execute(call)
		e.sess.AddMessage(ai.ChatCompletionMessage{
			Role:       ai.ChatMessageRoleTool,
			Content:    result,
			ToolCallID: call.ID,
		})
	}

	// Wrap-up invocation: narrative only, further tool calls are not acted
	// on in this design
	followUp, err := e.invoke(ctx, true)
	if err != nil {
		return err
	}
	e.sess.AddMessage(ai.ChatCompletionMessage{
		Role:    ai.ChatMessageRoleAssistant,
		Content: followUp.Content,
	})
	return nil
}

func (e *Engineer) invoke(ctx context.Context, followUp bool) (ai.ChatCompletionMessage, error) {
	tctx, cancel := context.WithTimeout(ctx, e.cfg.API.Timeout)
	defer cancel()

	stream, err := e.client.Stream(tctx, e.sess.GetHistory())
	if err != nil {
		return ai.ChatCompletionMessage{}, err
	}
	defer stream.Close()

	e.ui.StreamStarted(followUp)

	start := time.Now()
	defer core.LogDuration(core.GetLogger(), "completion", start)

	assembler := llm.NewAssembler(e.ui.Reasoning, e.ui.Content)
	return assembler.Consume(stream)
}

// AddReport summarizes one /add directive for display.
type AddReport struct {
	Path        string
	IsDir       bool
	Added       []string
	Skipped     []string
	TokensAdded int
	Truncated   bool
}

// AddPath loads a file or directory into the conversation as system-role
// context. A single file that would overflow the budget is rejected without
// mutating history; an oversized-but-fitting file is truncated first.
func (e *Engineer) AddPath(path string) (*AddReport, error) {
	normalized, isDir, err := fileops.Stat(path)
	if err != nil {
		return nil, err
	}
	if isDir {
		return e.addDirectory(normalized)
	}
	return e.addFile(normalized)
}

func (e *Engineer) addFile(path string) (*AddReport, error) {
	content, err := fileops.ReadLocalFile(path)
	if err != nil {
		return nil, err
	}

	report := &AddReport{Path: path}
	fileTokens := session.EstimateTokens(content)

	if e.sess.WouldExceed(fileTokens) {
		return nil, fmt.Errorf("%w: adding %s (%d tokens) at %d/%d used",
			core.ErrBudgetExceeded, path, fileTokens, e.sess.TotalTokens(), e.sess.MaxContextTokens())
	}

	if fileTokens > e.cfg.Budget.MaxFileTokens {
		content = session.Truncate(content, e.cfg.Budget.MaxFileTokens)
		report.Truncated = true
	}

	e.sess.AddMessage(ai.ChatCompletionMessage{
		Role:    ai.ChatMessageRoleSystem,
		Content: fmt.Sprintf("%s:\n\n%s", tools.FileContextMarker(path), content),
	})

	report.Added = []string{path}
	report.TokensAdded = session.EstimateTokens(content)
	return report, nil
}

func (e *Engineer) addDirectory(path string) (*AddReport, error) {
	result, err := fileops.ScanDirectory(path, fileops.ScanOptions{
		MaxFiles:         e.cfg.Budget.MaxFilesPerAdd,
		MaxFileTokens:    e.cfg.Budget.MaxFileTokens,
		MaxContextTokens: e.sess.MaxContextTokens(),
		CurrentTokens:    e.sess.TotalTokens(),
	})
	if err != nil {
		return nil, err
	}

	report := &AddReport{
		Path:        path,
		IsDir:       true,
		Skipped:     result.Skipped,
		TokensAdded: result.TokensAdded,
		Truncated:   result.Halted,
	}

	if len(result.Files) == 0 {
		return report, nil
	}

	sections := make([]string, 0, len(result.Files))
	for _, file := range result.Files {
		sections = append(sections, fmt.Sprintf("=== %s ===\n%s", file.RelPath, file.Content))
		report.Added = append(report.Added, file.RelPath)
	}

	e.sess.AddMessage(ai.ChatCompletionMessage{
		Role:    ai.ChatMessageRoleSystem,
		Content: fmt.Sprintf("Files from directory '%s':\n\n%s", path, strings.Join(sections, "\n\n")),
	})
	return report, nil
}

// Usage is the answer to the token-usage query.
type Usage struct {
	Current  int
	Max      int
	Messages int
}

func (e *Engineer) TokenUsage() Usage {
	return Usage{
		Current:  e.sess.TotalTokens(),
		Max:      e.sess.MaxContextTokens(),
		Messages: e.sess.MessageCount(),
	}
}
