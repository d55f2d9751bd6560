package live

import (
	"encoding/json"

	"github.com/linguameet/whiteboard/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeError = "error"

	// Connection
	TypeWelcome = "welcome"

	// Engine → surface
	TypeFrame   = "frame"
	TypeDocSync = "doc.sync"

	// Pointer input, screen coordinates
	TypePointerDown  = "pointer.down"
	TypePointerMove  = "pointer.move"
	TypePointerUp    = "pointer.up"
	TypePointerLeave = "pointer.leave"

	// Options
	TypeOptionsSet = "options.set"
	TypeToolSet    = "tool.set"

	// Pages
	TypePageAdd        = "page.add"
	TypePageDelete     = "page.delete"
	TypePageSwitch     = "page.switch"
	TypePageClear      = "page.clear"
	TypePageRename     = "page.rename"
	TypePageBackground = "page.background"

	// View
	TypeViewPan   = "view.pan"
	TypeViewZoom  = "view.zoom"
	TypeViewReset = "view.reset"

	// History and selection
	TypeUndo            = "history.undo"
	TypeRedo            = "history.redo"
	TypeSelectionDelete = "selection.delete"

	// Import, decoded off the hub loop
	TypeImageImport = "image.import"
)

// PointerPayload carries a screen position. Text is the answer to the text
// tool's prompt; surfaces ask the user before sending pointer.down.
type PointerPayload struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text,omitempty"`
}

type ToolPayload struct {
	Tool document.Tool `json:"tool"`
}

type PagePayload struct {
	PageID     string `json:"pageId,omitempty"`
	Name       string `json:"name,omitempty"`
	Background string `json:"background,omitempty"`
}

type PanPayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type ZoomPayload struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	In bool    `json:"in"`
}

// ImagePayload carries an encoded bitmap; JSON encodes it as base64.
type ImagePayload struct {
	Data []byte `json:"data"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	BoardID  string `json:"boardId"`
}

// PageSummary lists a page without its elements.
type PageSummary struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	BackgroundColor string `json:"backgroundColor"`
	Elements        int    `json:"elements"`
}

// DocSyncPayload is the document state a surface needs for its chrome.
type DocSyncPayload struct {
	ActivePageID string                  `json:"activePageId"`
	Pages        []PageSummary           `json:"pages"`
	Options      document.DrawingOptions `json:"activeToolOptions"`
	CanUndo      bool                    `json:"canUndo"`
	CanRedo      bool                    `json:"canRedo"`
	Revision     uint64                  `json:"revision"`
}
