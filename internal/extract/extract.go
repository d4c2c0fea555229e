// Package extract turns source documents (PDF, DOCX, Markdown, HTML, plain
// text) into paragraph-separated plain text for the refinement pipeline.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

type extractFunc func(path string) (string, error)

var extractors = map[string]extractFunc{
	".pdf":      fromPDF,
	".docx":     fromDOCX,
	".md":       fromMarkdown,
	".markdown": fromMarkdown,
	".html":     fromHTML,
	".htm":      fromHTML,
	".txt":      fromText,
}

// Supported reports whether path names a file this package can extract.
// Dotfiles are never supported, whatever their extension.
func Supported(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ForFile extracts paragraph-separated plain text from the file at path,
// choosing the extractor by extension.
func ForFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fn, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
	return fn(path)
}

// normalizeNewlines folds Windows and bare-CR line endings to LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
