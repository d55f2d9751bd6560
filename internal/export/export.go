// Package export writes pages out as raster images or as a paginated
// archive, and brings bitmaps in as image elements. Failures are returned
// as *Error and never touch the document.
package export

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/render"
)

// Error reports a failed export or import step.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ImageRenderer composes one sheet into a bitmap.
type ImageRenderer interface {
	RenderImage(ctx context.Context, s render.Sheet) (image.Image, error)
}

// ArchiveWriter writes sheets as the pages of one document.
type ArchiveWriter interface {
	WriteArchive(w io.Writer, sheets []render.Sheet) error
}

type Exporter struct {
	Images   ImageRenderer
	Archive  ArchiveWriter
	Measurer element.TextMeasurer
	// Width and Height are the minimum sheet size; content beyond it grows
	// the sheet.
	Width  float64
	Height float64
	Logger *slog.Logger
}

func (x *Exporter) logger() *slog.Logger {
	if x.Logger == nil {
		return slog.Default()
	}
	return x.Logger
}

func (x *Exporter) sheet(p document.Page) render.Sheet {
	w, h := x.Width, x.Height
	if w <= 0 || h <= 0 {
		w, h = 1280, 720
	}
	return render.PageSheet(p, x.Measurer, w, h)
}

// ExportImage writes page as PNG to w.
func (x *Exporter) ExportImage(ctx context.Context, page document.Page, w io.Writer) error {
	const op = "export image"
	if x.Images == nil {
		return &Error{Op: op, Err: fmt.Errorf("no image renderer configured")}
	}
	start := time.Now()
	img, err := x.Images.RenderImage(ctx, x.sheet(page))
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if err := render.EncodePNG(w, img); err != nil {
		return &Error{Op: op, Err: err}
	}
	x.logger().Info("page exported", "page", page.ID, "elements", len(page.Elements), "duration", time.Since(start))
	return nil
}

// ExportArchive writes every page of doc, in order, as one archive to w.
func (x *Exporter) ExportArchive(ctx context.Context, doc document.Document, w io.Writer) error {
	const op = "export archive"
	if x.Archive == nil {
		return &Error{Op: op, Err: fmt.Errorf("no archive writer configured")}
	}
	sheets := make([]render.Sheet, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return &Error{Op: op, Err: err}
		}
		sheets = append(sheets, x.sheet(p))
	}
	if err := x.Archive.WriteArchive(w, sheets); err != nil {
		return &Error{Op: op, Err: err}
	}
	x.logger().Info("document exported", "pages", len(sheets))
	return nil
}

// ExportImageFile writes page as a PNG file at path.
func (x *Exporter) ExportImageFile(ctx context.Context, page document.Page, path string) error {
	return writeAtomic(path, "export image", func(w io.Writer) error {
		return x.ExportImage(ctx, page, w)
	})
}

// ExportArchiveFile writes doc as an archive file at path.
func (x *Exporter) ExportArchiveFile(ctx context.Context, doc document.Document, path string) error {
	return writeAtomic(path, "export archive", func(w io.Writer) error {
		return x.ExportArchive(ctx, doc, w)
	})
}

// writeAtomic writes through a temp file in the target directory so a
// failed export never leaves a partial file behind.
func writeAtomic(path, op string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: op, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &Error{Op: op, Err: err}
	}
	return nil
}
