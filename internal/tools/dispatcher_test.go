package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ai "github.com/sashabaranov/go-openai"

	"github.com/joelfuller2016/deepseek-engineer/internal/session"
)

func newTestDispatcher() (*Dispatcher, *session.Session) {
	sess := session.NewSession("system prompt", 30, 200000)
	return NewDispatcher(sess, nil), sess
}

func call(name, args string) ai.ToolCall {
	return ai.ToolCall{
		ID:       "call_test",
		Type:     ai.ToolTypeFunction,
		Function: ai.FunctionCall{Name: name, Arguments: args},
	}
}

func TestExecute_ReadFile(t *testing.T) {
	d, _ := newTestDispatcher()
	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("file body"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := d.Execute(call(OpReadFile, fmt.Sprintf(`{"file_path":%q}`, path)))

	if !strings.Contains(result, "Content of file") || !strings.Contains(result, "file body") {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestExecute_ReadFile_NotFound(t *testing.T) {
	d, _ := newTestDispatcher()

	result := d.Execute(call(OpReadFile, `{"file_path":"/nonexistent/nope.txt"}`))

	if !strings.HasPrefix(result, "Error executing read_file:") {
		t.Errorf("expected error result, got %q", result)
	}
}

func TestExecute_MalformedArguments(t *testing.T) {
	d, _ := newTestDispatcher()

	ops := []string{OpReadFile, OpReadMultipleFiles, OpCreateFile, OpCreateMultipleFiles, OpEditFile}
	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			result := d.Execute(call(op, `{"file_path": not json`))
			if !strings.HasPrefix(result, "Error executing "+op+":") {
				t.Errorf("malformed args should produce an error result, got %q", result)
			}
		})
	}
}

func TestExecute_UnknownOperation(t *testing.T) {
	d, _ := newTestDispatcher()

	result := d.Execute(call("delete_everything", `{}`))

	if !strings.Contains(result, "unknown") {
		t.Errorf("expected unknown-operation error, got %q", result)
	}
}

func TestExecute_CreateFile(t *testing.T) {
	d, _ := newTestDispatcher()
	path := filepath.Join(t.TempDir(), "new", "main.go")

	result := d.Execute(call(OpCreateFile,
		fmt.Sprintf(`{"file_path":%q,"content":"package main\n"}`, path)))

	if !strings.Contains(result, "Successfully created") {
		t.Fatalf("unexpected result: %q", result)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "package main\n" {
		t.Errorf("file not written correctly: %q, %v", data, err)
	}
}

func TestExecute_CreateFile_InvalidPath(t *testing.T) {
	d, _ := newTestDispatcher()

	result := d.Execute(call(OpCreateFile, `{"file_path":"~/evil.txt","content":"x"}`))

	if !strings.HasPrefix(result, "Error executing create_file:") {
		t.Errorf("expected rejection, got %q", result)
	}
}

func TestExecute_ReadMultipleFiles_PartialFailure(t *testing.T) {
	d, _ := newTestDispatcher()
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	if err := os.WriteFile(good, []byte("good content"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.txt")

	result := d.Execute(call(OpReadMultipleFiles,
		fmt.Sprintf(`{"file_paths":[%q,%q]}`, good, missing)))

	if !strings.Contains(result, "good content") {
		t.Error("readable file missing from result")
	}
	if !strings.Contains(result, "Error reading") {
		t.Error("failing file error not reported inline")
	}
	if !strings.Contains(result, strings.Repeat("=", 50)) {
		t.Error("results not separated")
	}
	if strings.HasPrefix(result, "Error executing") {
		t.Error("partial failure must not fail the whole call")
	}
}

func TestExecute_CreateMultipleFiles(t *testing.T) {
	d, _ := newTestDispatcher()
	dir := t.TempDir()

	result := d.Execute(call(OpCreateMultipleFiles, fmt.Sprintf(
		`{"files":[{"path":%q,"content":"a"},{"path":%q,"content":"b"}]}`,
		filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"))))

	if !strings.Contains(result, "Successfully created 2 files") {
		t.Errorf("unexpected result: %q", result)
	}
}

func TestExecute_CreateMultipleFiles_AbortsOnFailure(t *testing.T) {
	d, _ := newTestDispatcher()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")

	result := d.Execute(call(OpCreateMultipleFiles, fmt.Sprintf(
		`{"files":[{"path":%q,"content":"a"},{"path":"~/bad.txt","content":"b"},{"path":%q,"content":"c"}]}`,
		first, filepath.Join(dir, "third.txt"))))

	if !strings.HasPrefix(result, "Error executing create_multiple_files:") {
		t.Fatalf("expected batch failure, got %q", result)
	}
	if _, err := os.Stat(first); err != nil {
		t.Error("files before the failure should exist")
	}
	if _, err := os.Stat(filepath.Join(dir, "third.txt")); err == nil {
		t.Error("files after the failure should not exist")
	}
}

func TestExecute_EditFile(t *testing.T) {
	d, sess := newTestDispatcher()
	path := filepath.Join(t.TempDir(), "code.go")
	if err := os.WriteFile(path, []byte("old value"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := d.Execute(call(OpEditFile, fmt.Sprintf(
		`{"file_path":%q,"original_snippet":"old","new_snippet":"new"}`, path)))

	if !strings.Contains(result, "Successfully edited") {
		t.Fatalf("unexpected result: %q", result)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new value" {
		t.Errorf("edit not applied: %q", data)
	}
	// The edit loads the file into context first
	if !sess.ContainsContent(FileContextMarker(path)) {
		t.Error("edited file not recorded in conversation context")
	}
}

func TestExecute_EditFile_ContextAddedOnce(t *testing.T) {
	d, sess := newTestDispatcher()
	path := filepath.Join(t.TempDir(), "code.go")
	if err := os.WriteFile(path, []byte("a1 a2"), 0o644); err != nil {
		t.Fatal(err)
	}

	before := sess.MessageCount()
	d.Execute(call(OpEditFile, fmt.Sprintf(
		`{"file_path":%q,"original_snippet":"a1","new_snippet":"b1"}`, path)))
	afterFirst := sess.MessageCount()
	d.Execute(call(OpEditFile, fmt.Sprintf(
		`{"file_path":%q,"original_snippet":"a2","new_snippet":"b2"}`, path)))
	afterSecond := sess.MessageCount()

	if afterFirst != before+1 {
		t.Errorf("first edit should add one context message, got %d new", afterFirst-before)
	}
	if afterSecond != afterFirst {
		t.Errorf("second edit should not re-add context, got %d new", afterSecond-afterFirst)
	}
}

func TestExecute_EditFile_SnippetNotFound(t *testing.T) {
	d, _ := newTestDispatcher()
	path := filepath.Join(t.TempDir(), "code.go")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	result := d.Execute(call(OpEditFile, fmt.Sprintf(
		`{"file_path":%q,"original_snippet":"absent","new_snippet":"x"}`, path)))

	if !strings.HasPrefix(result, "Error executing edit_file:") {
		t.Fatalf("expected failure result, got %q", result)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "content" {
		t.Error("failed edit must not modify the file")
	}
}

func TestDefinitions_CoverAllOperations(t *testing.T) {
	defs := Definitions()
	if len(defs) != 5 {
		t.Fatalf("expected 5 tool definitions, got %d", len(defs))
	}

	names := map[string]bool{}
	for _, def := range defs {
		names[def.Function.Name] = true
	}
	for _, op := range []string{OpReadFile, OpReadMultipleFiles, OpCreateFile, OpCreateMultipleFiles, OpEditFile} {
		if !names[op] {
			t.Errorf("missing definition for %s", op)
		}
	}
}
