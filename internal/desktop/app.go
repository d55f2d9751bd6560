package desktop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/export"
	"github.com/linguameet/whiteboard/internal/render"
	"github.com/linguameet/whiteboard/internal/store"
)

type Config struct {
	BoardID          string
	Store            store.Store
	Exporter         *export.Exporter
	Importer         *export.Importer
	Raster           *render.Raster
	Engine           engine.Options
	AutosaveInterval time.Duration
	Logger           *slog.Logger
}

// Run opens the editor window for doc and blocks until it is closed. The
// board is saved on an interval and when the window closes.
func Run(doc document.Document, cfg Config) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 30 * time.Second
	}

	a := app.New()
	w := a.NewWindow("Whiteboard")
	w.Resize(fyne.NewSize(1280, 800))

	board := NewBoard(doc, cfg.Engine, cfg.Raster)
	board.SetWindow(w)

	ed := &editor{cfg: cfg, board: board, window: w}
	toolbar, chrome := NewToolbar(board, Actions{
		ImportImage:   ed.importImage,
		ExportPDF:     ed.exportPDF,
		ExportPNG:     ed.exportPNG,
		SetBackground: ed.setBackground,
	})
	board.OnChange = toolbar.Sync

	w.SetContent(container.NewBorder(chrome, nil, nil, nil, board))

	stop := make(chan struct{})
	go ed.autosave(stop)

	w.SetCloseIntercept(func() {
		close(stop)
		if err := ed.save(); err != nil {
			cfg.Logger.Error("save on close", "error", err)
		}
		w.Close()
	})
	w.ShowAndRun()
}

type editor struct {
	cfg    Config
	board  *Board
	window fyne.Window
}

func (ed *editor) save() error {
	if ed.cfg.Store == nil {
		return nil
	}
	var (
		doc   document.Document
		rev   uint64
		dirty bool
	)
	ed.board.View(func(e *engine.Engine) {
		doc, rev, dirty = e.Document(), e.Revision(), e.Dirty()
	})
	if !dirty {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ed.cfg.Store.Save(ctx, ed.cfg.BoardID, doc); err != nil {
		return err
	}
	ed.board.View(func(e *engine.Engine) { e.MarkSaved(rev) })
	ed.cfg.Logger.Info("board saved", "board", ed.cfg.BoardID, "revision", rev)
	return nil
}

func (ed *editor) autosave(stop <-chan struct{}) {
	ticker := time.NewTicker(ed.cfg.AutosaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := ed.save(); err != nil {
				ed.cfg.Logger.Error("autosave failed", "error", err)
			}
		case <-stop:
			return
		}
	}
}

func (ed *editor) importImage() {
	if ed.cfg.Importer == nil {
		return
	}
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			ed.showError(err)
			return
		}
		defer r.Close()

		cmd, err := ed.cfg.Importer.ImportCommand(context.Background(), r)
		if err != nil {
			ed.showError(err)
			return
		}
		ed.board.report(ed.board.Edit(func(e *engine.Engine) error { return e.Apply(cmd) }))
	}, ed.window)
}

func (ed *editor) exportPDF() {
	if ed.cfg.Exporter == nil {
		return
	}
	var doc document.Document
	ed.board.View(func(e *engine.Engine) { doc = e.Document() })

	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			ed.showError(err)
			return
		}
		ctx := context.Background()
		ed.showError(writeExport(wc,
			func(path string) error { return ed.cfg.Exporter.ExportArchiveFile(ctx, doc, path) },
			func(w io.Writer) error { return ed.cfg.Exporter.ExportArchive(ctx, doc, w) }))
	}, ed.window)
	d.SetFileName("whiteboard.pdf")
	d.Show()
}

func (ed *editor) exportPNG() {
	if ed.cfg.Exporter == nil {
		return
	}
	var page document.Page
	ed.board.View(func(e *engine.Engine) { page = e.Document().ActivePage() })

	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			ed.showError(err)
			return
		}
		ctx := context.Background()
		ed.showError(writeExport(wc,
			func(path string) error { return ed.cfg.Exporter.ExportImageFile(ctx, page, path) },
			func(w io.Writer) error { return ed.cfg.Exporter.ExportImage(ctx, page, w) }))
	}, ed.window)
	d.SetFileName(fmt.Sprintf("%s.png", page.DisplayName))
	d.Show()
}

// setBackground asks for a hex colour for the active page.
// writeExport replaces a local file atomically and streams into wc for any
// other storage.
func writeExport(wc fyne.URIWriteCloser, toFile func(path string) error, toWriter func(io.Writer) error) error {
	uri := wc.URI()
	if uri.Scheme() == "file" {
		if err := wc.Close(); err != nil {
			return err
		}
		return toFile(uri.Path())
	}
	err := toWriter(wc)
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	return err
}

func (ed *editor) setBackground() {
	entry := widget.NewEntry()
	ed.board.View(func(e *engine.Engine) { entry.SetText(e.Document().ActivePage().BackgroundColor) })
	items := []*widget.FormItem{widget.NewFormItem("Color", entry)}
	dialog.ShowForm("Page background", "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		ed.board.report(ed.board.Edit(func(e *engine.Engine) error {
			return e.Apply(document.SetBackground{ID: e.Document().ActivePageID, Color: entry.Text})
		}))
	}, ed.window)
}

func (ed *editor) showError(err error) {
	if err == nil {
		return
	}
	ed.cfg.Logger.Warn("desktop action failed", "error", err)
	dialog.ShowError(err, ed.window)
}
