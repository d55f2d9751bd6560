package desktop

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/geom"
)

var toolNames = []document.Tool{
	document.ToolSelect,
	document.ToolPen,
	document.ToolHighlighter,
	document.ToolLine,
	document.ToolRectangle,
	document.ToolCircle,
	document.ToolText,
	document.ToolLaser,
	document.ToolEraser,
}

var palette = []string{"#000000", "#ef4444", "#22c55e", "#2563eb", "#eab308", "#ffffff"}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(hexColor(s.Hex))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

func hexColor(hex string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// Actions are the document-level commands the toolbar offers that need the
// application (files, dialogs).
type Actions struct {
	ImportImage   func()
	ExportPDF     func()
	ExportPNG     func()
	SetBackground func()
}

// Toolbar is the editor chrome: tool picker, colours, width, pages and
// history.
type Toolbar struct {
	board   *Board
	tools   *widget.Select
	pages   *widget.Select
	status  *widget.Label
	pageIDs []string
	syncing bool
}

func NewToolbar(board *Board, actions Actions) (*Toolbar, fyne.CanvasObject) {
	t := &Toolbar{board: board, status: widget.NewLabel("")}

	names := make([]string, len(toolNames))
	for i, tool := range toolNames {
		names[i] = string(tool)
	}
	t.tools = widget.NewSelect(names, func(name string) {
		if t.syncing {
			return
		}
		board.report(board.Edit(func(e *engine.Engine) error {
			return e.SetTool(document.Tool(name))
		}))
	})

	t.pages = widget.NewSelect(nil, func(string) {
		if t.syncing {
			return
		}
		i := t.pages.SelectedIndex()
		if i < 0 || i >= len(t.pageIDs) {
			return
		}
		id := t.pageIDs[i]
		board.report(board.Edit(func(e *engine.Engine) error { return e.SwitchPage(id) }))
	})

	onColor := func(hex string) {
		board.report(board.Edit(func(e *engine.Engine) error {
			opts := e.Document().Options
			opts.StrokeColor = hex
			return e.SetOptions(opts)
		}))
	}
	colorBox := container.NewHBox()
	for _, hex := range palette {
		colorBox.Add(newColorSwatch(hex, onColor))
	}

	strokeSlider := widget.NewSlider(1, 50)
	strokeSlider.SetValue(document.DefaultOptions().StrokeWidth)
	strokeSlider.OnChangeEnded = func(val float64) {
		board.report(board.Edit(func(e *engine.Engine) error {
			opts := e.Document().Options
			opts.StrokeWidth = val
			return e.SetOptions(opts)
		}))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), strokeSlider)

	center := func() geom.Point {
		s := board.Size()
		return geom.Pt(float64(s.Width)/2, float64(s.Height)/2)
	}
	edit := func(fn func(e *engine.Engine) error) func() {
		return func() { board.report(board.Edit(fn)) }
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), edit(func(e *engine.Engine) error {
			e.Undo()
			return nil
		})),
		widget.NewToolbarAction(theme.ContentRedoIcon(), edit(func(e *engine.Engine) error {
			e.Redo()
			return nil
		})),
		widget.NewToolbarAction(theme.DeleteIcon(), edit(func(e *engine.Engine) error {
			return e.DeleteSelection()
		})),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentAddIcon(), edit(func(e *engine.Engine) error {
			_, err := e.AddPage("")
			return err
		})),
		widget.NewToolbarAction(theme.ContentRemoveIcon(), edit(func(e *engine.Engine) error {
			return e.DeletePage(e.Document().ActivePageID)
		})),
		widget.NewToolbarAction(theme.ContentClearIcon(), edit(func(e *engine.Engine) error {
			return e.ClearPage()
		})),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), orNoop(actions.SetBackground)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), edit(func(e *engine.Engine) error {
			e.ZoomIn(center())
			return nil
		})),
		widget.NewToolbarAction(theme.ZoomOutIcon(), edit(func(e *engine.Engine) error {
			e.ZoomOut(center())
			return nil
		})),
		widget.NewToolbarAction(theme.ZoomFitIcon(), edit(func(e *engine.Engine) error {
			e.ResetView()
			return nil
		})),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), orNoop(actions.ImportImage)),
		widget.NewToolbarAction(theme.FileImageIcon(), orNoop(actions.ExportPNG)),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), orNoop(actions.ExportPDF)),
	)

	t.Sync()

	return t, container.NewVBox(
		container.NewHBox(
			widget.NewLabel("Tool:"),
			t.tools,
			widget.NewSeparator(),
			widget.NewLabel("Color:"),
			colorBox,
			widget.NewSeparator(),
			widget.NewLabel("Size:"),
			sliderContainer,
			layout.NewSpacer(),
		),
		container.NewHBox(
			tb,
			widget.NewSeparator(),
			widget.NewLabel("Page:"),
			t.pages,
			layout.NewSpacer(),
			t.status,
		),
	)
}

func orNoop(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	return fn
}

// Sync refreshes the chrome from the engine.
func (t *Toolbar) Sync() {
	var (
		doc   document.Document
		scale float64
	)
	t.board.View(func(e *engine.Engine) {
		doc = e.Document()
		scale = e.Viewport().Scale
	})

	t.syncing = true
	defer func() { t.syncing = false }()

	t.tools.SetSelected(string(doc.Options.Tool))

	t.pageIDs = t.pageIDs[:0]
	names := make([]string, len(doc.Pages))
	active := 0
	for i, p := range doc.Pages {
		t.pageIDs = append(t.pageIDs, p.ID)
		names[i] = fmt.Sprintf("%d. %s", i+1, p.DisplayName)
		if p.ID == doc.ActivePageID {
			active = i
		}
	}
	t.pages.Options = names
	t.pages.Refresh()
	t.pages.SetSelectedIndex(active)

	t.status.SetText(fmt.Sprintf("%d pages · %.0f%%", len(doc.Pages), scale*100))
}
