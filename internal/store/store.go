// Package store persists whiteboard documents. Documents are stored as a
// JSON envelope carrying a schema version; files and Postgres snapshots
// use the same encoding.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/linguameet/whiteboard/internal/document"
)

// SchemaVersion is the envelope version written by Encode.
const SchemaVersion = 1

var (
	ErrNotFound      = errors.New("board not found")
	ErrSchemaVersion = errors.New("unsupported schema version")
)

// Store loads and saves the document of a board.
type Store interface {
	Load(ctx context.Context, boardID string) (document.Document, error)
	Save(ctx context.Context, boardID string, doc document.Document) error
}

type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Document      json.RawMessage `json:"document"`
}

// Encode wraps doc in a versioned envelope.
func Encode(doc document.Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return json.Marshal(envelope{SchemaVersion: SchemaVersion, Document: raw})
}

// Decode unwraps an envelope and checks the document's invariants.
func Decode(data []byte) (document.Document, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return document.Document{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.SchemaVersion != SchemaVersion {
		return document.Document{}, fmt.Errorf("%w: %d", ErrSchemaVersion, env.SchemaVersion)
	}

	var doc document.Document
	if err := json.Unmarshal(env.Document, &doc); err != nil {
		return document.Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	if err := document.Check(doc); err != nil {
		return document.Document{}, fmt.Errorf("stored document: %w", err)
	}
	return doc, nil
}

// LoadOrCreate loads boardID, or saves and returns fresh() when the board
// does not exist yet.
func LoadOrCreate(ctx context.Context, s Store, boardID string, fresh func() document.Document) (document.Document, error) {
	doc, err := s.Load(ctx, boardID)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return document.Document{}, err
	}
	doc = fresh()
	if err := s.Save(ctx, boardID, doc); err != nil {
		return document.Document{}, err
	}
	return doc, nil
}
