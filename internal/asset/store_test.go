package asset

import (
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOpenDelete(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})

	a, err := s.Save(img)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Width)
	assert.Equal(t, 2, a.Height)
	assert.Equal(t, URLPrefix+a.ID+".png", a.URL)

	for _, locator := range []string{a.ID, a.URL, a.ID + ".png"} {
		got, err := s.OpenImage(locator)
		require.NoError(t, err, locator)
		assert.Equal(t, img.Bounds(), got.Bounds())
		r, _, _, _ := got.At(1, 1).RGBA()
		assert.Equal(t, uint32(200), r>>8)
	}

	require.NoError(t, s.Delete(a.ID))
	_, err = s.OpenImage(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(a.ID), ErrNotFound)
}

func TestLocatorRejectsPaths(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	for _, locator := range []string{"../etc/passwd", "page_01h455vb4pex5vsknk084sn02q", ""} {
		_, err := s.OpenImage(locator)
		assert.ErrorIs(t, err, ErrNotFound, locator)
	}
}

func TestServe(t *testing.T) {
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	a, err := s.Save(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Serve().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, a.URL, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}
