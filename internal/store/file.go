package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/linguameet/whiteboard/internal/document"
)

var boardIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// FileStore keeps one JSON file per board in a directory.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(boardID string) (string, error) {
	if !boardIDPattern.MatchString(boardID) {
		return "", fmt.Errorf("invalid board id %q", boardID)
	}
	return filepath.Join(s.dir, boardID+".json"), nil
}

func (s *FileStore) Load(_ context.Context, boardID string) (document.Document, error) {
	path, err := s.path(boardID)
	if err != nil {
		return document.Document{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return document.Document{}, fmt.Errorf("%s: %w", boardID, ErrNotFound)
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("read board: %w", err)
	}
	return Decode(data)
}

// Save replaces the board file atomically.
func (s *FileStore) Save(_ context.Context, boardID string, doc document.Document) error {
	path, err := s.path(boardID)
	if err != nil {
		return err
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+boardID+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write board: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace board: %w", err)
	}
	s.logger.Debug("board saved", "board", boardID, "bytes", len(data))
	return nil
}
