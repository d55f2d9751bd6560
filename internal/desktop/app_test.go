package desktop

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferWriter struct {
	bytes.Buffer
	uri    fyne.URI
	closed bool
}

func (w *bufferWriter) URI() fyne.URI { return w.uri }
func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

// memURI is a non-file location such as a cloud or sandboxed store.
type memURI struct{ path string }

func (u memURI) String() string    { return "mem://" + u.path }
func (u memURI) Extension() string { return filepath.Ext(u.path) }
func (u memURI) Name() string      { return filepath.Base(u.path) }
func (u memURI) MimeType() string  { return "application/octet-stream" }
func (u memURI) Scheme() string    { return "mem" }
func (u memURI) Authority() string { return "" }
func (u memURI) Path() string      { return u.path }
func (u memURI) Query() string     { return "" }
func (u memURI) Fragment() string  { return "" }

func TestWriteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	local := &bufferWriter{uri: storage.NewFileURI(path)}

	var gotPath string
	err := writeExport(local,
		func(p string) error { gotPath = p; return nil },
		func(io.Writer) error { t.Fatal("streamed a local file"); return nil })
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.True(t, local.closed)

	remote := &bufferWriter{uri: memURI{path: "/board.png"}}
	err = writeExport(remote,
		func(string) error { t.Fatal("wrote a remote file by path"); return nil },
		func(w io.Writer) error { _, err := w.Write([]byte("png")); return err })
	require.NoError(t, err)
	assert.Equal(t, "png", remote.String())
	assert.True(t, remote.closed)
}
