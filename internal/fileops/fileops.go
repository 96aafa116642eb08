package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joelfuller2016/deepseek-engineer/internal/core"
)

// MaxWriteBytes caps the payload of a single file write.
const MaxWriteBytes = 5_000_000

// binaryPeekSize is how much of a file the null-byte sniff inspects.
const binaryPeekSize = 1024

// NormalizePath returns a canonical absolute version of the path. Paths with
// home-directory shorthand or parent-directory traversal are rejected.
func NormalizePath(pathStr string) (string, error) {
	for _, part := range strings.Split(filepath.ToSlash(pathStr), "/") {
		if strings.HasPrefix(part, "~") {
			return "", fmt.Errorf("%w: %s contains home directory references", core.ErrInvalidPath, pathStr)
		}
	}

	abs, err := filepath.Abs(pathStr)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", core.ErrInvalidPath, pathStr, err)
	}

	for _, part := range strings.Split(filepath.ToSlash(abs), "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s contains parent directory references", core.ErrInvalidPath, pathStr)
		}
	}
	return abs, nil
}

// ReadLocalFile returns the text content of a local file.
func ReadLocalFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// CreateFile creates or overwrites the file at path, creating missing parent
// directories. The path must normalize cleanly and the content must fit under
// MaxWriteBytes.
func CreateFile(path, content string) error {
	normalized, err := NormalizePath(path)
	if err != nil {
		return err
	}

	if len(content) > MaxWriteBytes {
		return fmt.Errorf("%w: %d bytes over the %d byte cap", core.ErrContentTooLarge, len(content), MaxWriteBytes)
	}

	if err := os.MkdirAll(filepath.Dir(normalized), 0o755); err != nil {
		return fmt.Errorf("creating parent directories for %s: %w", path, err)
	}
	if err := os.WriteFile(normalized, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	core.GetLogger().Debugw("Created file", "path", normalized, "bytes", len(content))
	return nil
}

// IsBinaryFile sniffs for a null byte in the file's first kilobyte. Unreadable
// files count as binary. A heuristic, not a content-type authority.
func IsBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, binaryPeekSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}
