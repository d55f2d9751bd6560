package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguameet/whiteboard/internal/document"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	doc := document.NewSampleDocument()
	data, err := Encode(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schemaVersion":1`)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"future version", `{"schemaVersion":2,"document":{}}`, ErrSchemaVersion},
		{"missing version", `{"document":{}}`, ErrSchemaVersion},
		{"dangling active page", `{"schemaVersion":1,"document":{"activePageId":"x","pages":[{"id":"p","displayName":"Page 1","backgroundColor":"#ffffff","elements":[]}],"activeToolOptions":{"activeTool":"pen","strokeColor":"#000000","strokeWidth":2}}}`, document.ErrPageNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"schemaVersion":1,"document":{"pages":[{"elements":[{"type":"laser","x":1,"y":1}]}]}}`))
	assert.Error(t, err)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Load(ctx, "lesson")
	assert.ErrorIs(t, err, ErrNotFound)

	doc, err := LoadOrCreate(ctx, s, "lesson", func() document.Document { return document.New("P1", "") })
	require.NoError(t, err)
	assert.Equal(t, "P1", doc.ActivePageID)

	doc, err = document.Apply(doc, document.AddPage{ID: "P2", Background: "#000000"})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "lesson", doc))

	loaded, err := LoadOrCreate(ctx, s, "lesson", func() document.Document {
		t.Fatal("existing board recreated")
		return document.Document{}
	})
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files cleaned up")
	assert.Equal(t, "lesson.json", entries[0].Name())
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	for _, id := range []string{"", "../escape", "a/b", "with space"} {
		assert.Error(t, s.Save(context.Background(), id, document.New("P1", "")), id)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"schemaVersion":9}`), 0o600))

	_, err = s.Load(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrSchemaVersion)
}
