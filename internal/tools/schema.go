package tools

import (
	ai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// Operation names form a closed set; anything else is rejected at dispatch.
const (
	OpReadFile            = "read_file"
	OpReadMultipleFiles   = "read_multiple_files"
	OpCreateFile          = "create_file"
	OpCreateMultipleFiles = "create_multiple_files"
	OpEditFile            = "edit_file"
)

// Definitions returns the fixed tool schema declared on every model request.
func Definitions() []ai.Tool {
	return []ai.Tool{
		{
			Type: ai.ToolTypeFunction,
			Function: &ai.FunctionDefinition{
				Name:        OpReadFile,
				Description: "Read the content of a single file from the filesystem",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"file_path": {
							Type:        jsonschema.String,
							Description: "The path to the file to read (relative or absolute)",
						},
					},
					Required: []string{"file_path"},
				},
			},
		},
		{
			Type: ai.ToolTypeFunction,
			Function: &ai.FunctionDefinition{
				Name:        OpReadMultipleFiles,
				Description: "Read the content of multiple files from the filesystem",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"file_paths": {
							Type:        jsonschema.Array,
							Items:       &jsonschema.Definition{Type: jsonschema.String},
							Description: "Array of file paths to read (relative or absolute)",
						},
					},
					Required: []string{"file_paths"},
				},
			},
		},
		{
			Type: ai.ToolTypeFunction,
			Function: &ai.FunctionDefinition{
				Name:        OpCreateFile,
				Description: "Create a new file or overwrite an existing file with the provided content",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"file_path": {
							Type:        jsonschema.String,
							Description: "The path where the file should be created",
						},
						"content": {
							Type:        jsonschema.String,
							Description: "The content to write to the file",
						},
					},
					Required: []string{"file_path", "content"},
				},
			},
		},
		{
			Type: ai.ToolTypeFunction,
			Function: &ai.FunctionDefinition{
				Name:        OpCreateMultipleFiles,
				Description: "Create multiple files at once",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"files": {
							Type: jsonschema.Array,
							Items: &jsonschema.Definition{
								Type: jsonschema.Object,
								Properties: map[string]jsonschema.Definition{
									"path":    {Type: jsonschema.String},
									"content": {Type: jsonschema.String},
								},
								Required: []string{"path", "content"},
							},
							Description: "Array of files to create with their paths and content",
						},
					},
					Required: []string{"files"},
				},
			},
		},
		{
			Type: ai.ToolTypeFunction,
			Function: &ai.FunctionDefinition{
				Name:        OpEditFile,
				Description: "Edit an existing file by replacing a specific snippet with new content",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"file_path": {
							Type:        jsonschema.String,
							Description: "The path to the file to edit",
						},
						"original_snippet": {
							Type:        jsonschema.String,
							Description: "The exact text snippet to find and replace",
						},
						"new_snippet": {
							Type:        jsonschema.String,
							Description: "The new text to replace the original snippet with",
						},
					},
					Required: []string{"file_path", "original_snippet", "new_snippet"},
				},
			},
		},
	}
}
