package core

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Archith7/MediSaarthi/internal/models"
)

// IsImage reports whether a file is image-typed. The declared content type
// wins, then the extension, then content sniffing.
func IsImage(f models.SelectedFile) bool {
	return strings.HasPrefix(detectContentType(f), "image/")
}

func detectContentType(f models.SelectedFile) string {
	if ct := strings.TrimSpace(f.ContentType); ct != "" {
		return strings.ToLower(ct)
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name))); ct != "" {
		return ct
	}
	if len(f.Content) > 0 {
		return http.DetectContentType(f.Content)
	}
	return ""
}

// LoadFiles reads the given paths from disk. Glob patterns are expanded and
// directories skipped; a pattern matching nothing is an error.
func LoadFiles(paths []string) ([]models.SelectedFile, error) {
	var files []models.SelectedFile
	for _, pattern := range paths {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		matches := []string{pattern}
		if strings.ContainsAny(pattern, "*?[") {
			var err error
			matches, err = filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %q", pattern)
			}
		}

		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", path, err)
			}
			if info.IsDir() {
				continue
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			file := models.SelectedFile{
				Name:    filepath.Base(path),
				Content: content,
			}
			file.ContentType = detectContentType(file)
			files = append(files, file)
		}
	}
	return files, nil
}
