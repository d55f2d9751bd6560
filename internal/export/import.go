package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/linguameet/whiteboard/internal/asset"
	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/typeid"
)

// Imported images are placed at a fixed frame; users move them afterwards.
var (
	DefaultImageOrigin = geom.Pt(100, 100)
	DefaultImageWidth  = 200.0
	DefaultImageHeight = 150.0
)

const (
	defaultMaxImageBytes  = 10 << 20 // 10MB
	defaultMaxImagePixels = 16 << 20
)

var (
	ErrImageTooLarge = errors.New("image too large")
	ErrUndecodable   = errors.New("unsupported or corrupt image")
)

// AssetSaver persists decoded bitmaps.
type AssetSaver interface {
	Save(img image.Image) (asset.Asset, error)
	Delete(locator string) error
}

type Importer struct {
	Assets   AssetSaver
	MaxBytes int64
	// MaxPixels caps the decoded width*height; the header is checked
	// before any pixels are allocated.
	MaxPixels int
	NewID     func() string
}

// Import decodes r (PNG, JPEG, GIF, BMP or WebP), stores the bitmap and
// returns the image element to commit.
func (im *Importer) Import(ctx context.Context, r io.Reader) (element.Image, error) {
	const op = "import image"
	limit := im.MaxBytes
	if limit <= 0 {
		limit = defaultMaxImageBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return element.Image{}, &Error{Op: op, Err: err}
	}
	if int64(len(data)) > limit {
		return element.Image{}, &Error{Op: op, Err: fmt.Errorf("%w: over %d bytes", ErrImageTooLarge, limit)}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return element.Image{}, &Error{Op: op, Err: fmt.Errorf("%w: %v", ErrUndecodable, err)}
	}
	maxPixels := im.MaxPixels
	if maxPixels <= 0 {
		maxPixels = defaultMaxImagePixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPixels/cfg.Height {
		return element.Image{}, &Error{Op: op, Err: fmt.Errorf("%w: %dx%d pixels", ErrImageTooLarge, cfg.Width, cfg.Height)}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return element.Image{}, &Error{Op: op, Err: fmt.Errorf("%w: %v", ErrUndecodable, err)}
	}
	if err := ctx.Err(); err != nil {
		return element.Image{}, &Error{Op: op, Err: err}
	}

	if im.Assets == nil {
		return element.Image{}, &Error{Op: op, Err: errors.New("no asset store configured")}
	}
	a, err := im.Assets.Save(img)
	if err != nil {
		return element.Image{}, &Error{Op: op, Err: err}
	}
	if err := ctx.Err(); err != nil {
		// Nobody will reference the file.
		if derr := im.Assets.Delete(a.URL); derr != nil {
			err = errors.Join(err, derr)
		}
		return element.Image{}, &Error{Op: op, Err: err}
	}

	newID := im.NewID
	if newID == nil {
		newID = typeid.NewElementID
	}
	return element.Image{
		ID:     newID(),
		X:      DefaultImageOrigin.X,
		Y:      DefaultImageOrigin.Y,
		Width:  DefaultImageWidth,
		Height: DefaultImageHeight,
		Source: a.URL,
	}, nil
}

// ImportCommand imports r and returns the command adding it to the active
// page.
func (im *Importer) ImportCommand(ctx context.Context, r io.Reader) (document.Command, error) {
	el, err := im.Import(ctx, r)
	if err != nil {
		return nil, err
	}
	return document.AddElement{Element: el}, nil
}
