package tools

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ai "github.com/sashabaranov/go-openai"

	"github.com/joelfuller2016/deepseek-engineer/internal/core"
	"github.com/joelfuller2016/deepseek-engineer/internal/fileops"
	"github.com/joelfuller2016/deepseek-engineer/internal/session"
)

// Typed argument structs for the closed operation set. Unknown names are a
// dispatch error, not a fallthrough.

type ReadFileArgs struct {
	FilePath string `json:"file_path"`
}

type ReadMultipleFilesArgs struct {
	FilePaths []string `json:"file_paths"`
}

type CreateFileArgs struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

type FileSpec struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type CreateMultipleFilesArgs struct {
	Files []FileSpec `json:"files"`
}

type EditFileArgs struct {
	FilePath        string `json:"file_path"`
	OriginalSnippet string `json:"original_snippet"`
	NewSnippet      string `json:"new_snippet"`
}

// Dispatcher executes tool calls against the local filesystem. Every failure
// is rendered as a result string; nothing escapes the Execute boundary, so
// the model always gets a tool result it can react to.
type Dispatcher struct {
	session *session.Session
	notify  fileops.Notifier
}

func NewDispatcher(sess *session.Session, notify fileops.Notifier) *Dispatcher {
	if notify == nil {
		notify = fileops.NopNotifier{}
	}
	return &Dispatcher{session: sess, notify: notify}
}

// Execute runs one tool call and returns its result text. Malformed
// arguments, unknown operations, and filesystem faults all come back as
// error strings, never as errors or panics.
func (d *Dispatcher) Execute(call ai.ToolCall) (result string) {
	name := call.Function.Name
	logger := core.WithTool(core.GetLogger(), name, nil)

	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("Tool execution panicked", "panic", r)
			result = fmt.Sprintf("Error executing %s: %v", name, r)
		}
	}()

	start := time.Now()
	defer core.LogDuration(logger, name, start)

	out, err := d.dispatch(name, []byte(call.Function.Arguments))
	if err != nil {
		logger.Warnw("Tool execution failed", "error", err)
		return fmt.Sprintf("Error executing %s: %v", name, err)
	}
	return out
}

func (d *Dispatcher) dispatch(name string, rawArgs []byte) (string, error) {
	switch name {
	case OpReadFile:
		var args ReadFileArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("parsing arguments: %w", err)
		}
		return d.readFile(args)
	case OpReadMultipleFiles:
		var args ReadMultipleFilesArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("parsing arguments: %w", err)
		}
		return d.readMultipleFiles(args)
	case OpCreateFile:
		var args CreateFileArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("parsing arguments: %w", err)
		}
		return d.createFile(args)
	case OpCreateMultipleFiles:
		var args CreateMultipleFilesArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("parsing arguments: %w", err)
		}
		return d.createMultipleFiles(args)
	case OpEditFile:
		var args EditFileArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return "", fmt.Errorf("parsing arguments: %w", err)
		}
		return d.editFile(args)
	default:
		return "", fmt.Errorf("%w: %s", core.ErrUnknownOperation, name)
	}
}

func (d *Dispatcher) readFile(args ReadFileArgs) (string, error) {
	normalized, err := fileops.NormalizePath(args.FilePath)
	if err != nil {
		return "", err
	}
	content, err := fileops.ReadLocalFile(normalized)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Content of file '%s':\n\n%s", normalized, content), nil
}

// readMultipleFiles reads each path independently; a failing file reports
// its error inline and the loop continues.
func (d *Dispatcher) readMultipleFiles(args ReadMultipleFilesArgs) (string, error) {
	results := make([]string, 0, len(args.FilePaths))
	for _, path := range args.FilePaths {
		normalized, err := fileops.NormalizePath(path)
		if err != nil {
			results = append(results, fmt.Sprintf("Error reading '%s': %v", path, err))
			continue
		}
		content, err := fileops.ReadLocalFile(normalized)
		if err != nil {
			results = append(results, fmt.Sprintf("Error reading '%s': %v", path, err))
			continue
		}
		results = append(results, fmt.Sprintf("Content of file '%s':\n\n%s", normalized, content))
	}
	separator := "\n\n" + strings.Repeat("=", 50) + "\n\n"
	return strings.Join(results, separator), nil
}

func (d *Dispatcher) createFile(args CreateFileArgs) (string, error) {
	if err := fileops.CreateFile(args.FilePath, args.Content); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully created file '%s'", args.FilePath), nil
}

// createMultipleFiles aborts the batch on the first failing file.
func (d *Dispatcher) createMultipleFiles(args CreateMultipleFilesArgs) (string, error) {
	created := make([]string, 0, len(args.Files))
	for _, file := range args.Files {
		if err := fileops.CreateFile(file.Path, file.Content); err != nil {
			return "", fmt.Errorf("creating %s (created %d of %d): %w", file.Path, len(created), len(args.Files), err)
		}
		created = append(created, file.Path)
	}
	return fmt.Sprintf("Successfully created %d files: %s", len(created), strings.Join(created, ", ")), nil
}

func (d *Dispatcher) editFile(args EditFileArgs) (string, error) {
	// The file must be loaded into context before it may be edited
	if err := d.ensureFileInContext(args.FilePath); err != nil {
		return "", fmt.Errorf("could not read file '%s' for editing: %w", args.FilePath, err)
	}

	edit := fileops.EditSpec{
		Path:            args.FilePath,
		OriginalSnippet: args.OriginalSnippet,
		NewSnippet:      args.NewSnippet,
	}
	if err := fileops.ApplyDiffEdit(edit, d.notify); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully edited file '%s'", args.FilePath), nil
}

// ensureFileInContext appends the file's content as a system message unless
// it is already present, so the model always edits against known content.
func (d *Dispatcher) ensureFileInContext(path string) error {
	normalized, err := fileops.NormalizePath(path)
	if err != nil {
		return err
	}
	content, err := fileops.ReadLocalFile(normalized)
	if err != nil {
		return err
	}
	marker := FileContextMarker(normalized)
	if !d.session.ContainsContent(marker) {
		d.session.AddMessage(ai.ChatCompletionMessage{
			Role:    ai.ChatMessageRoleSystem,
			Content: fmt.Sprintf("%s:\n\n%s", marker, content),
		})
	}
	return nil
}

// FileContextMarker is the prefix that identifies a file's content in the
// transcript.
func FileContextMarker(path string) string {
	return fmt.Sprintf("Content of file '%s'", path)
}
