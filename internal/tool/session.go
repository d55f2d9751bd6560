// Package tool turns pointer gestures into document commands.
//
// A Session is Idle until a pointer-down starts a draft for the active
// tool. Moves reshape the draft; pointer-up commits it with a fresh id,
// except for the laser, whose draft is only ever shown and then dropped.
package tool

import (
	"slices"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/selection"
	"github.com/linguameet/whiteboard/internal/typeid"
)

type State int

const (
	Idle State = iota
	Drafting
)

func (s State) String() string {
	if s == Drafting {
		return "drafting"
	}
	return "idle"
}

// TextPrompter asks the user for the content of a text label. It blocks
// until the user answers; an empty answer cancels the label.
type TextPrompter interface {
	PromptText(at geom.Point) string
}

// PromptFunc adapts a function to TextPrompter.
type PromptFunc func(at geom.Point) string

func (f PromptFunc) PromptText(at geom.Point) string { return f(at) }

type Config struct {
	Prompt   TextPrompter
	NewID    func() string
	Measurer element.TextMeasurer
}

type Session struct {
	cfg   Config
	state State
	tool  document.Tool
	start geom.Point
	draft element.Element
}

func NewSession(cfg Config) *Session {
	if cfg.NewID == nil {
		cfg.NewID = typeid.NewElementID
	}
	return &Session{cfg: cfg}
}

func (s *Session) State() State { return s.state }

// Draft returns the element being drawn, or nil when Idle.
func (s *Session) Draft() element.Element { return s.draft }

// Down starts a gesture at p, in document coordinates. The eraser and the
// text tool finish immediately and return the command to apply; every
// other tool returns nil. Unknown tools leave the session Idle. A Down
// while Drafting drops the previous draft.
func (s *Session) Down(opts document.DrawingOptions, p geom.Point) document.Command {
	s.Abort()

	switch opts.Tool {
	case document.ToolEraser:
		return selection.EraseAt{Point: p, Measurer: s.cfg.Measurer}
	case document.ToolText:
		return s.text(opts, p)
	}

	draft := startDraft(opts, p)
	if draft == nil {
		return nil
	}
	s.state = Drafting
	s.tool = opts.Tool
	s.start = p
	s.draft = draft
	return nil
}

func (s *Session) text(opts document.DrawingOptions, p geom.Point) document.Command {
	if s.cfg.Prompt == nil {
		return nil
	}
	content := s.cfg.Prompt.PromptText(p)
	if content == "" {
		return nil
	}
	size := opts.FontSize
	if size <= 0 {
		size = document.DefaultOptions().FontSize
	}
	family := opts.FontFamily
	if family == "" {
		family = document.DefaultOptions().FontFamily
	}
	return document.AddElement{Element: element.Text{
		ID:          s.cfg.NewID(),
		X:           p.X,
		Y:           p.Y,
		Text:        content,
		StrokeColor: opts.StrokeColor,
		FontSize:    size,
		FontFamily:  family,
	}}
}

func startDraft(opts document.DrawingOptions, p geom.Point) element.Element {
	switch opts.Tool {
	case document.ToolPen:
		return element.Freehand{Points: []geom.Point{p}, StrokeColor: opts.StrokeColor, StrokeWidth: opts.StrokeWidth}
	case document.ToolHighlighter:
		return element.Highlighter{
			Points:      []geom.Point{p},
			StrokeColor: opts.StrokeColor,
			StrokeWidth: opts.StrokeWidth * element.HighlighterWidthFactor,
		}
	case document.ToolLine:
		return element.Line{X1: p.X, Y1: p.Y, X2: p.X, Y2: p.Y, StrokeColor: opts.StrokeColor, StrokeWidth: opts.StrokeWidth}
	case document.ToolRectangle:
		return element.Rectangle{X: p.X, Y: p.Y, StrokeColor: opts.StrokeColor, StrokeWidth: opts.StrokeWidth, FillColor: opts.FillColor}
	case document.ToolCircle:
		return element.Circle{X: p.X, Y: p.Y, StrokeColor: opts.StrokeColor, StrokeWidth: opts.StrokeWidth, FillColor: opts.FillColor}
	case document.ToolLaser:
		return element.Laser{X: p.X, Y: p.Y, StrokeColor: opts.StrokeColor}
	default:
		return nil
	}
}

// Move reshapes the draft to follow p.
func (s *Session) Move(p geom.Point) {
	if s.state != Drafting {
		return
	}
	switch d := s.draft.(type) {
	case element.Freehand:
		d.Points = append(slices.Clip(d.Points), p)
		s.draft = d
	case element.Highlighter:
		d.Points = append(slices.Clip(d.Points), p)
		s.draft = d
	case element.Line:
		d.X2, d.Y2 = p.X, p.Y
		s.draft = d
	case element.Rectangle:
		d.Width, d.Height = p.X-s.start.X, p.Y-s.start.Y
		s.draft = d
	case element.Circle:
		d.Radius = s.start.Distance(p)
		s.draft = d
	case element.Laser:
		d.X, d.Y = p.X, p.Y
		s.draft = d
	}
}

// Up ends the gesture. It returns the command committing the draft, or nil
// when there is nothing to commit.
func (s *Session) Up() document.Command {
	if s.state != Drafting {
		return nil
	}
	draft := s.draft
	s.Abort()

	if element.IsEphemeral(draft) {
		return nil
	}
	if r, ok := draft.(element.Rectangle); ok {
		n := r.Rect()
		r.X, r.Y, r.Width, r.Height = n.X, n.Y, n.Width, n.Height
		draft = r
	}
	return document.AddElement{Element: draft.WithID(s.cfg.NewID())}
}

// Abort drops the draft without committing it.
func (s *Session) Abort() {
	s.state = Idle
	s.tool = ""
	s.draft = nil
}

// Tool is the tool of the current draft, empty when Idle.
func (s *Session) Tool() document.Tool { return s.tool }
