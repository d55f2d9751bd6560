package document

import (
	"github.com/linguameet/whiteboard/internal/element"
)

const DefaultBackground = "#ffffff"

// Document is the whiteboard: an ordered, never empty set of pages, the
// active page pointer and the drawing options the tool session reads.
type Document struct {
	ActivePageID string         `json:"activePageId"`
	Pages        []Page         `json:"pages"`
	Options      DrawingOptions `json:"activeToolOptions"`
}

type Page struct {
	ID              string       `json:"id"`
	DisplayName     string       `json:"displayName"`
	BackgroundColor string       `json:"backgroundColor"`
	Elements        element.List `json:"elements"`
}

type Tool string

const (
	ToolPen         Tool = "pen"
	ToolHighlighter Tool = "highlighter"
	ToolLine        Tool = "line"
	ToolRectangle   Tool = "rectangle"
	ToolCircle      Tool = "circle"
	ToolText        Tool = "text"
	ToolLaser       Tool = "laser"
	ToolEraser      Tool = "eraser"
	ToolSelect      Tool = "select"
)

// DrawingOptions is read when a gesture starts. The tool identifier is kept
// as given; the tool session ignores identifiers it does not know.
type DrawingOptions struct {
	Tool        Tool    `json:"activeTool"`
	StrokeColor string  `json:"strokeColor" validate:"required,hexcolor"`
	StrokeWidth float64 `json:"strokeWidth" validate:"gt=0,lte=200"`
	FillColor   string  `json:"fillColor,omitempty" validate:"omitempty,hexcolor"`
	FontSize    float64 `json:"fontSize,omitempty" validate:"omitempty,gt=0,lte=400"`
	FontFamily  string  `json:"fontFamily,omitempty"`
}

func DefaultOptions() DrawingOptions {
	return DrawingOptions{
		Tool:        ToolPen,
		StrokeColor: "#000000",
		StrokeWidth: 2,
		FontSize:    20,
		FontFamily:  "sans-serif",
	}
}

// New creates a document with a single empty page.
func New(pageID, background string) Document {
	if background == "" {
		background = DefaultBackground
	}
	return Document{
		ActivePageID: pageID,
		Pages: []Page{{
			ID:              pageID,
			DisplayName:     pageName(0),
			BackgroundColor: background,
			Elements:        element.List{},
		}},
		Options: DefaultOptions(),
	}
}

// PageIndex returns the position of the page with id, or -1.
func (d Document) PageIndex(id string) int {
	for i, p := range d.Pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Page looks up a page by id.
func (d Document) Page(id string) (Page, bool) {
	i := d.PageIndex(id)
	if i < 0 {
		return Page{}, false
	}
	return d.Pages[i], true
}

// ActivePage returns the page edits go to. A document built through Apply
// always has one.
func (d Document) ActivePage() Page {
	p, _ := d.Page(d.ActivePageID)
	return p
}

// ElementIndex returns the position of the element with id, or -1.
func (p Page) ElementIndex(id string) int {
	for i, el := range p.Elements {
		if el.ElementID() == id {
			return i
		}
	}
	return -1
}

// Element looks up an element by id.
func (p Page) Element(id string) (element.Element, bool) {
	i := p.ElementIndex(id)
	if i < 0 {
		return nil, false
	}
	return p.Elements[i], true
}
