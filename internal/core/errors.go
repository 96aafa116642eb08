package core

import "errors"

// Fault classes shared across the file, patch, and session layers. Callers
// match with errors.Is; the tool dispatch boundary flattens them into
// tool-result text so a failed call never ends the conversation.
var (
	// ErrInvalidPath marks paths containing home-directory shorthand or
	// parent-directory traversal.
	ErrInvalidPath = errors.New("invalid path")

	// ErrContentTooLarge marks write payloads over the file size cap.
	ErrContentTooLarge = errors.New("content exceeds size limit")

	// ErrNotFound marks a file that could not be read.
	ErrNotFound = errors.New("file not found")

	// ErrSnippetNotFound marks an edit whose original snippet does not
	// occur in the target file.
	ErrSnippetNotFound = errors.New("original snippet not found")

	// ErrAmbiguousSnippet marks an edit whose original snippet occurs more
	// than once; the caller must supply a larger, unique snippet.
	ErrAmbiguousSnippet = errors.New("ambiguous snippet")

	// ErrBudgetExceeded marks an operation that would overflow the
	// conversation token ceiling.
	ErrBudgetExceeded = errors.New("context token budget exceeded")

	// ErrUnknownOperation marks a tool call naming no registered operation.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrTransport marks a failed model request or an abnormally ended
	// stream. Fatal to the turn, not to the session.
	ErrTransport = errors.New("transport fault")
)
