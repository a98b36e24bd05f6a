// Package jsonfile persists one outlet's articles as a JSON array on disk.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"graphics_feed/internal/domain"
)

// Store reads and writes a JSON array of articles at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted articles. A missing file is an empty store.
// An unreadable or corrupt file yields an empty slice together with a
// *domain.PersistenceError so the caller can log it and carry on.
func (s *Store) Load(ctx context.Context) ([]domain.Article, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Article{}, nil
	}
	if err != nil {
		return []domain.Article{}, &domain.PersistenceError{Path: s.path, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Article{}, nil
	}

	var articles []domain.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return []domain.Article{}, &domain.PersistenceError{Path: s.path, Err: fmt.Errorf("decode: %w", err)}
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	return articles, nil
}

// Save writes articles only when there are strictly more of them than are
// currently persisted. It reports whether the file was written.
func (s *Store) Save(ctx context.Context, articles []domain.Article) (bool, error) {
	persisted, _ := s.Load(ctx)
	if len(articles) <= len(persisted) {
		return false, nil
	}

	if err := s.Replace(ctx, articles); err != nil {
		return false, err
	}
	return true, nil
}

// Replace writes articles unconditionally.
func (s *Store) Replace(ctx context.Context, articles []domain.Article) error {
	if articles == nil {
		articles = []domain.Article{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(articles); err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}

	return writeFile(s.path, buf.Bytes())
}

// TextFile holds a plain text artifact written next to the stores, such as
// the unresolved image report or the RSS document.
type TextFile struct {
	path string
}

func NewTextFile(path string) *TextFile {
	return &TextFile{path: path}
}

func (f *TextFile) Path() string {
	return f.path
}

// WriteLines writes one entry per line.
func (f *TextFile) WriteLines(ctx context.Context, lines []string) error {
	return f.Write(ctx, strings.Join(lines, "\n")+"\n")
}

func (f *TextFile) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFile(f.path, []byte(text))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
