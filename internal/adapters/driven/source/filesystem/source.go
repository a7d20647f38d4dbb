// Package filesystem provides a document source that reads plain-text
// and markdown files from a local directory tree.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/veldt-labs/ragkit/internal/core/domain"
	"github.com/veldt-labs/ragkit/internal/core/ports/driven"
	"github.com/veldt-labs/ragkit/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// extensions lists the file types treated as documents.
var extensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// Source reads documents from the local filesystem.
type Source struct{}

// NewSource creates a new filesystem document source.
func NewSource() *Source {
	return &Source{}
}

// Name returns the source identifier.
func (s *Source) Name() string {
	return "filesystem"
}

// Fetch reads all supported files under location, which may be a single
// file or a directory walked recursively. Document IDs are derived from
// file paths, so fetching the same tree twice replaces rather than
// duplicates.
func (s *Source) Fetch(ctx context.Context, location string) ([]domain.Document, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", location, err)
	}

	if !info.IsDir() {
		doc, err := s.readFile(location, info)
		if err != nil {
			return nil, err
		}
		return []domain.Document{doc}, nil
	}

	var docs []domain.Document
	err = filepath.WalkDir(location, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git.
			if strings.HasPrefix(d.Name(), ".") && path != location {
				return filepath.SkipDir
			}
			return nil
		}
		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		doc, err := s.readFile(path, info)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", location, err)
	}

	logger.Debug("Filesystem source: %d documents under %s", len(docs), location)
	return docs, nil
}

// readFile turns one file into a document.
func (s *Source) readFile(path string, info fs.FileInfo) (domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return domain.Document{
		ID:         documentID(path),
		Title:      title,
		Content:    string(content),
		Origin:     path,
		ModifiedAt: info.ModTime(),
	}, nil
}

// documentID derives a stable ID from the file path.
func documentID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	id := strings.TrimPrefix(abs, string(filepath.Separator))
	return "file:" + strings.ReplaceAll(id, string(filepath.Separator), "/")
}
