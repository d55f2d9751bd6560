// Package asset stores imported bitmaps on disk under typeid names and
// serves them back to surfaces.
package asset

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/linguameet/whiteboard/internal/typeid"
)

// URLPrefix is where Serve is mounted; image locators carry it.
const URLPrefix = "/assets/"

var ErrNotFound = errors.New("asset not found")

// Asset describes a stored bitmap.
type Asset struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Store keeps assets as PNG files in one directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store that keeps files in dir, creating it if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save encodes img as PNG under a fresh asset id. The file appears
// atomically.
func (s *Store) Save(img image.Image) (Asset, error) {
	id := typeid.NewAssetID()

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return Asset{}, fmt.Errorf("create asset file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return Asset{}, fmt.Errorf("encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Asset{}, fmt.Errorf("write asset: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return Asset{}, fmt.Errorf("store asset: %w", err)
	}

	b := img.Bounds()
	s.logger.Debug("asset stored", "id", id, "width", b.Dx(), "height", b.Dy())
	return Asset{ID: id, URL: URLPrefix + id + ".png", Width: b.Dx(), Height: b.Dy()}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".png")
}

// ID extracts the asset id from a locator: a bare id, a file name or an
// /assets/ URL.
func ID(locator string) (string, error) {
	id := strings.TrimPrefix(locator, URLPrefix)
	id = strings.TrimSuffix(id, ".png")
	if err := typeid.Validate(id, typeid.PrefixAsset); err != nil {
		return "", fmt.Errorf("locator %q: %w", locator, ErrNotFound)
	}
	return id, nil
}

// OpenImage decodes the asset behind locator. It implements
// render.ImageSource.
func (s *Store) OpenImage(locator string) (image.Image, error) {
	id, err := ID(locator)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return img, nil
}

// Delete removes an asset file from disk.
func (s *Store) Delete(locator string) error {
	id, err := ID(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (s *Store) Serve() http.Handler {
	fs := http.FileServer(http.Dir(s.dir))
	return http.StripPrefix(URLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}
