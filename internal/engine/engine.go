package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/selection"
	"github.com/linguameet/whiteboard/internal/tool"
	"github.com/linguameet/whiteboard/internal/typeid"
	"github.com/linguameet/whiteboard/internal/viewport"
)

var ErrNothingSelected = errors.New("nothing selected")

type Options struct {
	Logger       *slog.Logger
	Measurer     element.TextMeasurer
	Prompt       tool.TextPrompter
	NewElementID func() string
	NewPageID    func() string
	HistoryLimit int
}

// Engine is the editor session that owns the document, the viewport and the
// tool state. It processes pointer and page commands from a surface and
// returns frames to paint. It is not safe for concurrent use; callers
// serialize access (see the live hub).
type Engine struct {
	logger   *slog.Logger
	measurer element.TextMeasurer
	newPage  func() string

	// Document state
	doc     document.Document
	history *history

	// Presentation state, never persisted
	view    viewport.Viewport
	session *tool.Session

	// Selection state
	selected string
	drag     *dragState

	revision uint64
	saved    uint64
}

// dragState tracks a select-tool move between pointer-down and pointer-up.
type dragState struct {
	origin geom.Point
	delta  geom.Point
}

// New creates an engine editing doc.
func New(doc document.Document, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewPageID == nil {
		opts.NewPageID = typeid.NewPageID
	}
	return &Engine{
		logger:   opts.Logger,
		measurer: opts.Measurer,
		newPage:  opts.NewPageID,
		doc:      doc,
		history:  newHistory(opts.HistoryLimit),
		view:     viewport.New(),
		session: tool.NewSession(tool.Config{
			Prompt:   opts.Prompt,
			NewID:    opts.NewElementID,
			Measurer: opts.Measurer,
		}),
	}
}

// --- Commands (surface → engine) ---

// Load replaces the document after checking its invariants. History,
// selection and any draft are reset.
func (e *Engine) Load(doc document.Document) error {
	if err := document.Check(doc); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	e.doc = doc
	e.history.reset()
	e.session.Abort()
	e.clearSelection()
	e.revision++
	e.saved = e.revision
	return nil
}

// Apply runs cmd against the document. Rejected commands leave the document
// unchanged and are returned to the caller.
func (e *Engine) Apply(cmd document.Command) error {
	next, err := document.Apply(e.doc, cmd)
	if err != nil {
		e.logger.Debug("command rejected", "command", fmt.Sprintf("%T", cmd), "error", err)
		return err
	}
	if _, ok := cmd.(document.SetOptions); !ok {
		e.history.record(e.doc)
	}
	e.doc = next
	e.revision++
	e.pruneSelection()
	return nil
}

// AddPage appends a page with the given background and switches to it.
func (e *Engine) AddPage(background string) (string, error) {
	id := e.newPage()
	if err := e.Apply(document.AddPage{ID: id, Background: background}); err != nil {
		return "", err
	}
	e.session.Abort()
	return id, nil
}

// DeletePage removes a page. Deleting the active page abandons any gesture
// in progress on it.
func (e *Engine) DeletePage(id string) error {
	active := e.doc.ActivePageID
	if err := e.Apply(document.DeletePage{ID: id}); err != nil {
		return err
	}
	if e.doc.ActivePageID != active {
		e.PointerLeave()
	}
	return nil
}

func (e *Engine) SwitchPage(id string) error {
	if err := e.Apply(document.SwitchPage{ID: id}); err != nil {
		return err
	}
	e.session.Abort()
	return nil
}

func (e *Engine) ClearPage() error {
	return e.Apply(document.ClearPage{})
}

// SetOptions replaces the drawing options. A gesture in progress keeps the
// options it started with.
func (e *Engine) SetOptions(opts document.DrawingOptions) error {
	return e.Apply(document.SetOptions{Options: opts})
}

// SetTool changes only the active tool.
func (e *Engine) SetTool(t document.Tool) error {
	opts := e.doc.Options
	opts.Tool = t
	if t != document.ToolSelect {
		e.clearSelection()
	}
	return e.SetOptions(opts)
}

// PointerDown starts a gesture at a screen position.
func (e *Engine) PointerDown(screen geom.Point) error {
	p := e.view.ToDocument(screen)
	if e.doc.Options.Tool == document.ToolSelect {
		e.session.Abort()
		return e.beginDrag(p)
	}
	if cmd := e.session.Down(e.doc.Options, p); cmd != nil {
		return e.Apply(cmd)
	}
	return nil
}

// PointerMove updates the gesture in progress.
func (e *Engine) PointerMove(screen geom.Point) {
	p := e.view.ToDocument(screen)
	if e.drag != nil {
		e.drag.delta = p.Sub(e.drag.origin)
		return
	}
	e.session.Move(p)
}

// PointerUp finishes the gesture, committing any draft.
func (e *Engine) PointerUp() error {
	if e.drag != nil {
		return e.endDrag()
	}
	if cmd := e.session.Up(); cmd != nil {
		return e.Apply(cmd)
	}
	return nil
}

// PointerLeave aborts the gesture without touching the document.
func (e *Engine) PointerLeave() {
	e.session.Abort()
	e.drag = nil
}

func (e *Engine) beginDrag(p geom.Point) error {
	elems := e.doc.ActivePage().Elements
	i := selection.PickAt(elems, p, e.measurer)
	if i < 0 {
		e.clearSelection()
		return nil
	}
	e.selected = elems[i].ElementID()
	e.drag = &dragState{origin: p}
	return nil
}

func (e *Engine) endDrag() error {
	drag := e.drag
	e.drag = nil
	if drag.delta == (geom.Point{}) {
		return nil
	}
	return e.MoveSelection(drag.delta.X, drag.delta.Y)
}

// Undo restores the previous document. Drawing options are not part of
// history and stay as they are.
func (e *Engine) Undo() bool {
	return e.step(e.history.stepBack)
}

func (e *Engine) Redo() bool {
	return e.step(e.history.stepForward)
}

func (e *Engine) step(move func(document.Document) (document.Document, bool)) bool {
	next, ok := move(e.doc)
	if !ok {
		return false
	}
	next.Options = e.doc.Options
	e.doc = next
	e.session.Abort()
	e.drag = nil
	e.pruneSelection()
	e.revision++
	return true
}

func (e *Engine) CanUndo() bool { return e.history.canUndo() }
func (e *Engine) CanRedo() bool { return e.history.canRedo() }

// --- Viewport ---

func (e *Engine) Pan(dx, dy float64) {
	e.view = e.view.Pan(dx, dy)
}

func (e *Engine) ZoomIn(anchor geom.Point) {
	e.view = e.view.ZoomIn(anchor)
}

func (e *Engine) ZoomOut(anchor geom.Point) {
	e.view = e.view.ZoomOut(anchor)
}

func (e *Engine) SetViewport(v viewport.Viewport) {
	e.view = v.Normalize()
}

func (e *Engine) ResetView() {
	e.view = viewport.New()
}

// --- Selection ---

// Select marks an element of the active page as selected.
func (e *Engine) Select(id string) error {
	if _, ok := e.doc.ActivePage().Element(id); !ok {
		return document.ErrElementNotFound
	}
	e.selected = id
	return nil
}

func (e *Engine) clearSelection() {
	e.selected = ""
	e.drag = nil
}

// pruneSelection drops a selection whose element is no longer on the
// active page.
func (e *Engine) pruneSelection() {
	if e.selected == "" {
		return
	}
	if _, ok := e.doc.ActivePage().Element(e.selected); !ok {
		e.clearSelection()
	}
}

// MoveSelection translates the selected element by a document-space delta.
func (e *Engine) MoveSelection(dx, dy float64) error {
	el, ok := e.doc.ActivePage().Element(e.selected)
	if !ok {
		return ErrNothingSelected
	}
	return e.Apply(document.UpdateElement{Element: element.Translate(el, dx, dy)})
}

// DeleteSelection removes the selected element.
func (e *Engine) DeleteSelection() error {
	if e.selected == "" {
		return ErrNothingSelected
	}
	return e.Apply(document.DeleteElement{ID: e.selected})
}

// --- Queries (surface ← engine) ---

func (e *Engine) Document() document.Document { return e.doc }
func (e *Engine) Viewport() viewport.Viewport { return e.view }
func (e *Engine) Selection() string           { return e.selected }
func (e *Engine) Draft() element.Element      { return e.session.Draft() }

// Revision increases with every document change.
func (e *Engine) Revision() uint64 { return e.revision }

// Dirty reports whether the document changed since MarkSaved.
func (e *Engine) Dirty() bool { return e.revision != e.saved }

// MarkSaved records that revision has been persisted.
func (e *Engine) MarkSaved(revision uint64) {
	e.saved = revision
}

// HitTest returns the id of the topmost element within erase tolerance of
// a screen position, or the empty string.
func (e *Engine) HitTest(screen geom.Point) string {
	elems := e.doc.ActivePage().Elements
	i := selection.Topmost(elems, e.view.ToDocument(screen), e.measurer)
	if i < 0 {
		return ""
	}
	return elems[i].ElementID()
}

// SelectionBounds returns the highlight box of the selection in document
// coordinates, following an in-progress drag.
func (e *Engine) SelectionBounds() (geom.Rect, bool) {
	el, ok := e.displayed(e.selected)
	if !ok {
		return geom.Rect{}, false
	}
	return selection.Highlight(el, e.measurer)
}

// displayed returns the element as currently shown, which differs from the
// document while it is being dragged.
func (e *Engine) displayed(id string) (element.Element, bool) {
	if id == "" {
		return nil, false
	}
	el, ok := e.doc.ActivePage().Element(id)
	if ok && e.drag != nil {
		el = element.Translate(el, e.drag.delta.X, e.drag.delta.Y)
	}
	return el, ok
}

// Render compiles the active page, the draft and the selection outline into
// a frame. Commands are in painter's order.
func (e *Engine) Render() Frame {
	page := e.doc.ActivePage()
	commands := make([]DrawCommand, 0, len(page.Elements)+2)
	for _, el := range page.Elements {
		if el.ElementID() == e.selected {
			el, _ = e.displayed(el.ElementID())
		}
		if cmd, ok := CompileElement(el); ok {
			commands = append(commands, cmd)
		}
	}
	if draft := e.session.Draft(); draft != nil {
		if cmd, ok := CompileElement(draft); ok {
			commands = append(commands, cmd)
		}
	}
	if box, ok := e.SelectionBounds(); ok {
		commands = append(commands, SelectionCommand(e.selected, box))
	}

	transform := e.view.Matrix().ToSlice()
	for i := range commands {
		commands[i].Transform = transform
	}
	return Frame{
		PageID:     page.ID,
		PageName:   page.DisplayName,
		Background: page.BackgroundColor,
		Scale:      e.view.Scale,
		Commands:   commands,
	}
}

// RenderVisible is Render for a surface of width x height screen units.
// Path commands entirely outside the visible area are dropped.
func (e *Engine) RenderVisible(width, height float64) Frame {
	f := e.Render()
	if width <= 0 || height <= 0 {
		return f
	}
	visible := e.view.Visible(width, height)
	kept := f.Commands[:0]
	for _, cmd := range f.Commands {
		if cmd.Op == OpPath && len(cmd.Path) > 0 &&
			!PathBounds(cmd.Path).Expand(cmd.StrokeWidth/2).Intersects(visible) {
			continue
		}
		kept = append(kept, cmd)
	}
	f.Commands = kept
	return f
}
