package fileops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joelfuller2016/deepseek-engineer/internal/core"
	"github.com/joelfuller2016/deepseek-engineer/internal/session"
)

// maxScanFileBytes is the per-file size cap during directory ingestion.
const maxScanFileBytes = 500_000

// excludedNames are directory and file names never ingested: VCS state,
// dependency trees, build output, lockfiles, local environments.
var excludedNames = map[string]bool{
	".DS_Store": true, "Thumbs.db": true, ".gitignore": true, ".python-version": true,
	"uv.lock": true, ".uv": true, "uvenv": true, ".uvenv": true, ".venv": true, "venv": true,
	"__pycache__": true, ".pytest_cache": true, ".coverage": true, ".mypy_cache": true,
	"node_modules": true, "package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	".next": true, ".nuxt": true, "dist": true, "build": true, ".cache": true, ".parcel-cache": true,
	".turbo": true, ".vercel": true, ".output": true, ".contentlayer": true,
	"out": true, "coverage": true, ".nyc_output": true, "storybook-static": true,
	".env": true, ".env.local": true, ".env.development": true, ".env.production": true,
	".git": true, ".svn": true, ".hg": true, "CVS": true,
	"vendor": true, "go.sum": true,
}

// excludedExtensions are file extensions never ingested: binaries, media,
// archives, documents, caches.
var excludedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".svg": true,
	".webp": true, ".avif": true,
	".mp4": true, ".webm": true, ".mov": true, ".mp3": true, ".wav": true, ".ogg": true,
	".zip": true, ".tar": true, ".gz": true, ".7z": true, ".rar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".pyc": true, ".pyo": true, ".pyd": true, ".egg": true, ".whl": true,
	".db": true, ".sqlite": true, ".sqlite3": true, ".log": true,
	".map": true, ".min.js": true, ".min.css": true, ".bundle.js": true, ".bundle.css": true,
	".cache": true, ".tmp": true, ".temp": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true, ".eot": true,
}

// ScanOptions carries the budget limits for one directory ingestion.
type ScanOptions struct {
	MaxFiles         int
	MaxFileTokens    int
	MaxContextTokens int
	// CurrentTokens is the conversation's token usage before the scan.
	CurrentTokens int
}

// IngestedFile is one admitted file with its content, relative to the
// scanned root.
type IngestedFile struct {
	RelPath string
	Content string
	Tokens  int
}

// ScanResult reports what a directory scan admitted and what it passed over.
type ScanResult struct {
	Files       []IngestedFile
	Skipped     []string
	TokensAdded int
	// Halted is set when ingestion stopped because the next file would
	// have pushed the running total over the remaining context budget.
	Halted bool
}

// ScanDirectory walks root collecting eligible text files in walk order.
// Hidden and excluded directories are pruned; excluded names/extensions,
// oversized files, and binaries are skipped. At most opts.MaxFiles are
// admitted, and ingestion halts outright once the next file would overflow
// the remaining context budget. Files costing more than half the per-file
// token ceiling are truncated before being counted.
func ScanDirectory(root string, opts ScanOptions) (*ScanResult, error) {
	normalized, err := NormalizePath(root)
	if err != nil {
		return nil, err
	}

	var eligible []string
	result := &ScanResult{}

	err = filepath.WalkDir(normalized, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != normalized && (strings.HasPrefix(name, ".") || excludedNames[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || excludedNames[name] {
			result.Skipped = append(result.Skipped, path)
			return nil
		}
		if excludedExtensions[strings.ToLower(filepath.Ext(name))] {
			result.Skipped = append(result.Skipped, path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s (error reading)", path))
			return nil
		}
		if info.Size() > maxScanFileBytes {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s (too large: %d bytes)", path, info.Size()))
			return nil
		}
		if IsBinaryFile(path) {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s (binary)", path))
			return nil
		}

		eligible = append(eligible, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	if len(eligible) > opts.MaxFiles {
		core.GetLogger().Debugf("Limiting to first %d files (found %d)", opts.MaxFiles, len(eligible))
		eligible = eligible[:opts.MaxFiles]
	}

	for _, path := range eligible {
		content, err := ReadLocalFile(path)
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s (error reading)", path))
			continue
		}

		tokens := session.EstimateTokens(content)

		// A single oversized file is truncated before it is counted
		if tokens > opts.MaxFileTokens/2 {
			content = session.Truncate(content, opts.MaxFileTokens/2)
			tokens = session.EstimateTokens(content)
		}

		if opts.CurrentTokens+result.TokensAdded+tokens > opts.MaxContextTokens {
			result.Halted = true
			break
		}

		rel, err := filepath.Rel(normalized, path)
		if err != nil {
			rel = path
		}
		result.Files = append(result.Files, IngestedFile{RelPath: rel, Content: content, Tokens: tokens})
		result.TokensAdded += tokens
	}

	return result, nil
}

// Stat reports whether the normalized path exists and is a directory.
func Stat(path string) (normalized string, isDir bool, err error) {
	normalized, err = NormalizePath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(normalized)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return "", false, err
	}
	return normalized, info.IsDir(), nil
}
