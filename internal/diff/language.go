package diff

import (
	"path/filepath"
	"strings"
)

var languageByExtension = map[string]string{
	".c":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".cs":    "csharp",
	".go":    "go",
	".java":  "java",
	".js":    "javascript",
	".jsx":   "javascript",
	".kt":    "kotlin",
	".php":   "php",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".scala": "scala",
	".sh":    "shell",
	".sql":   "sql",
	".swift": "swift",
	".ts":    "typescript",
	".tsx":   "typescript",
}

// Language returns the source language for a file path based on its
// extension, or "text" when the extension is not recognized.
func Language(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExtension[ext]; ok {
		return lang
	}
	return "text"
}
