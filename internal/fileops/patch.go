package fileops

import (
	"fmt"
	"strings"

	"github.com/joelfuller2016/deepseek-engineer/internal/core"
)

// EditSpec is one snippet substitution: replace the sole occurrence of
// OriginalSnippet in the file at Path with NewSnippet. Transient — built for
// a single ApplyDiffEdit call.
type EditSpec struct {
	Path            string
	OriginalSnippet string
	NewSnippet      string
}

// Notifier receives the human-readable presentation of an attempted edit.
// Emitted on success and failure alike; rendering is the terminal layer's
// concern.
type Notifier interface {
	// EditProposed shows the before/after snippets of a pending edit.
	EditProposed(edit EditSpec)
	// EditFailed shows why an edit was rejected, with the expected snippet
	// and the actual file content for comparison.
	EditFailed(edit EditSpec, actual string, err error)
	// EditApplied confirms a completed edit.
	EditApplied(path string)
}

// NopNotifier discards all presentation events.
type NopNotifier struct{}

func (NopNotifier) EditProposed(EditSpec) {}

func (NopNotifier) EditFailed(EditSpec, string, error) {}

func (NopNotifier) EditApplied(string) {}

// ApplyDiffEdit replaces the first occurrence of the edit's original snippet
// with the new snippet and writes the file back. A snippet that does not
// occur fails with ErrSnippetNotFound; one that occurs more than once fails
// with ErrAmbiguousSnippet. Neither failure writes anything — the caller is
// expected to retry with a larger, uniquely-matching snippet.
func ApplyDiffEdit(edit EditSpec, notify Notifier) error {
	notify.EditProposed(edit)

	content, err := ReadLocalFile(edit.Path)
	if err != nil {
		notify.EditFailed(edit, "", err)
		return err
	}

	occurrences := strings.Count(content, edit.OriginalSnippet)
	if occurrences == 0 {
		err := fmt.Errorf("%w in %s", core.ErrSnippetNotFound, edit.Path)
		notify.EditFailed(edit, content, err)
		return err
	}
	if occurrences > 1 {
		err := fmt.Errorf("%w: %d matches in %s", core.ErrAmbiguousSnippet, occurrences, edit.Path)
		notify.EditFailed(edit, content, err)
		return err
	}

	updated := strings.Replace(content, edit.OriginalSnippet, edit.NewSnippet, 1)
	if err := CreateFile(edit.Path, updated); err != nil {
		notify.EditFailed(edit, content, err)
		return err
	}

	notify.EditApplied(edit.Path)
	return nil
}
