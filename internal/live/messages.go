package live

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/geom"
)

var errNoImporter = errors.New("image import is not configured")

// promptSlot answers the text tool with the text that arrived alongside the
// pointer.down message.
type promptSlot struct {
	text string
}

func (s *promptSlot) PromptText(geom.Point) string {
	text := s.text
	s.text = ""
	return text
}

func (h *Hub) handleMessage(client *Client, msg *Message) {
	if client != h.editor {
		return
	}
	before := h.engine.Revision()
	if err := h.dispatch(msg); err != nil {
		h.logger.Debug("message rejected", "type", msg.Type, "error", err)
		h.sendError(msg.Type, err)
	}
	h.publish(before)
}

func decode[T any](msg *Message) (T, error) {
	var v T
	if len(msg.Payload) == 0 {
		return v, fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("%s: %w", msg.Type, err)
	}
	return v, nil
}

func (h *Hub) dispatch(msg *Message) error {
	e := h.engine
	switch msg.Type {
	case TypePointerDown:
		p, err := decode[PointerPayload](msg)
		if err != nil {
			return err
		}
		h.prompt.text = p.Text
		defer func() { h.prompt.text = "" }()
		return e.PointerDown(geom.Pt(p.X, p.Y))

	case TypePointerMove:
		p, err := decode[PointerPayload](msg)
		if err != nil {
			return err
		}
		e.PointerMove(geom.Pt(p.X, p.Y))
		return nil

	case TypePointerUp:
		return e.PointerUp()

	case TypePointerLeave:
		e.PointerLeave()
		return nil

	case TypeOptionsSet:
		opts, err := decode[document.DrawingOptions](msg)
		if err != nil {
			return err
		}
		return e.SetOptions(opts)

	case TypeToolSet:
		p, err := decode[ToolPayload](msg)
		if err != nil {
			return err
		}
		return e.SetTool(p.Tool)

	case TypePageAdd:
		var p PagePayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				return err
			}
		}
		_, err := e.AddPage(p.Background)
		return err

	case TypePageDelete:
		p, err := decode[PagePayload](msg)
		if err != nil {
			return err
		}
		return e.DeletePage(p.PageID)

	case TypePageSwitch:
		p, err := decode[PagePayload](msg)
		if err != nil {
			return err
		}
		return e.SwitchPage(p.PageID)

	case TypePageClear:
		return e.ClearPage()

	case TypePageRename:
		p, err := decode[PagePayload](msg)
		if err != nil {
			return err
		}
		return e.Apply(document.RenamePage{ID: p.PageID, Name: p.Name})

	case TypePageBackground:
		p, err := decode[PagePayload](msg)
		if err != nil {
			return err
		}
		return e.Apply(document.SetBackground{ID: p.PageID, Color: p.Background})

	case TypeViewPan:
		p, err := decode[PanPayload](msg)
		if err != nil {
			return err
		}
		e.Pan(p.DX, p.DY)
		return nil

	case TypeViewZoom:
		p, err := decode[ZoomPayload](msg)
		if err != nil {
			return err
		}
		if p.In {
			e.ZoomIn(geom.Pt(p.X, p.Y))
		} else {
			e.ZoomOut(geom.Pt(p.X, p.Y))
		}
		return nil

	case TypeViewReset:
		e.ResetView()
		return nil

	case TypeUndo:
		e.Undo()
		return nil

	case TypeRedo:
		e.Redo()
		return nil

	case TypeSelectionDelete:
		return e.DeleteSelection()

	case TypeImageImport:
		p, err := decode[ImagePayload](msg)
		if err != nil {
			return err
		}
		return h.importImage(p.Data)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// importImage decodes and stores the bitmap off the loop; the element is
// added once that finishes.
func (h *Hub) importImage(data []byte) error {
	if h.importer == nil {
		return errNoImporter
	}
	h.Go(TypeImageImport, func(ctx context.Context) (func(*engine.Engine) error, error) {
		cmd, err := h.importer.ImportCommand(ctx, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return func(e *engine.Engine) error { return e.Apply(cmd) }, nil
	})
	return nil
}
