package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelfuller2016/deepseek-engineer/internal/core"
)

// recordingNotifier captures every presentation event for assertions.
type recordingNotifier struct {
	proposed []EditSpec
	failed   []error
	applied  []string
}

func (r *recordingNotifier) EditProposed(edit EditSpec) { r.proposed = append(r.proposed, edit) }

func (r *recordingNotifier) EditFailed(_ EditSpec, _ string, err error) {
	r.failed = append(r.failed, err)
}

func (r *recordingNotifier) EditApplied(path string) { r.applied = append(r.applied, path) }

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.go")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestApplyDiffEdit_UniqueMatch(t *testing.T) {
	path := writeTestFile(t, "func main() {\n\tfmt.Println(\"old\")\n}\n")
	notify := &recordingNotifier{}

	err := ApplyDiffEdit(EditSpec{
		Path:            path,
		OriginalSnippet: "fmt.Println(\"old\")",
		NewSnippet:      "fmt.Println(\"new\")",
	}, notify)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "func main() {\n\tfmt.Println(\"new\")\n}\n", string(data))

	assert.Len(t, notify.proposed, 1)
	assert.Equal(t, []string{path}, notify.applied)
	assert.Empty(t, notify.failed)
}

func TestApplyDiffEdit_SnippetNotFound(t *testing.T) {
	original := "package main\n"
	path := writeTestFile(t, original)
	notify := &recordingNotifier{}

	err := ApplyDiffEdit(EditSpec{
		Path:            path,
		OriginalSnippet: "does not exist",
		NewSnippet:      "replacement",
	}, notify)
	assert.ErrorIs(t, err, core.ErrSnippetNotFound)

	data, _ := os.ReadFile(path)
	assert.Equal(t, original, string(data), "failed edit must not touch the file")
	require.Len(t, notify.failed, 1)
	assert.ErrorIs(t, notify.failed[0], core.ErrSnippetNotFound)
	assert.Empty(t, notify.applied)
}

func TestApplyDiffEdit_AmbiguousSnippet(t *testing.T) {
	original := "x := 1\nx := 1\n"
	path := writeTestFile(t, original)
	notify := &recordingNotifier{}

	err := ApplyDiffEdit(EditSpec{
		Path:            path,
		OriginalSnippet: "x := 1",
		NewSnippet:      "x := 2",
	}, notify)
	assert.ErrorIs(t, err, core.ErrAmbiguousSnippet)

	data, _ := os.ReadFile(path)
	assert.Equal(t, original, string(data), "ambiguous edit must not touch the file")
}

func TestApplyDiffEdit_AmbiguousResolvedByWiderSnippet(t *testing.T) {
	path := writeTestFile(t, "a()\nx := 1\nb()\nx := 1\nc()\n")
	notify := &recordingNotifier{}

	err := ApplyDiffEdit(EditSpec{
		Path:            path,
		OriginalSnippet: "b()\nx := 1",
		NewSnippet:      "b()\nx := 2",
	}, notify)
	require.NoError(t, err)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "a()\nx := 1\nb()\nx := 2\nc()\n", string(data))
}

func TestApplyDiffEdit_MissingFile(t *testing.T) {
	notify := &recordingNotifier{}

	err := ApplyDiffEdit(EditSpec{
		Path:            filepath.Join(t.TempDir(), "missing.go"),
		OriginalSnippet: "a",
		NewSnippet:      "b",
	}, notify)
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.Len(t, notify.failed, 1)
}

func TestApplyDiffEdit_EmptyNewSnippetDeletes(t *testing.T) {
	path := writeTestFile(t, "keep\nremove me\nkeep\n")
	notify := &recordingNotifier{}

	err := ApplyDiffEdit(EditSpec{
		Path:            path,
		OriginalSnippet: "remove me\n",
		NewSnippet:      "",
	}, notify)
	require.NoError(t, err)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "keep\nkeep\n", string(data))
}
