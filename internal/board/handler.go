// Package board serves the whiteboard over HTTP. Every request runs against
// the live hub, so HTTP clients and the websocket editor see one document.
package board

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/export"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/live"
)

// Runner executes engine access on the hub loop.
type Runner interface {
	Do(ctx context.Context, fn func(*engine.Engine) error) error
	Save(ctx context.Context) error
}

type Exporter interface {
	ExportImage(ctx context.Context, page document.Page, w io.Writer) error
	ExportArchive(ctx context.Context, doc document.Document, w io.Writer) error
}

type Importer interface {
	Import(ctx context.Context, r io.Reader) (element.Image, error)
}

type Handler struct {
	hub      Runner
	exporter Exporter
	importer Importer
	logger   *slog.Logger
	// maximum multipart upload size
	maxUpload int64
}

func NewHandler(hub Runner, exporter Exporter, importer Importer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub:       hub,
		exporter:  exporter,
		importer:  importer,
		logger:    logger,
		maxUpload: 10 << 20,
	}
}

// Register mounts the board routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/board", h.Get).Methods("GET")
	r.HandleFunc("/board/state", h.State).Methods("GET")
	r.HandleFunc("/board/frame", h.Frame).Methods("GET")
	r.HandleFunc("/board/hit", h.Hit).Methods("GET")
	r.HandleFunc("/board/save", h.Save).Methods("POST")
	r.HandleFunc("/board/export.pdf", h.ExportArchive).Methods("GET")

	r.HandleFunc("/board/pages", h.AddPage).Methods("POST")
	r.HandleFunc("/board/pages/{pageId}", h.UpdatePage).Methods("PATCH")
	r.HandleFunc("/board/pages/{pageId}", h.DeletePage).Methods("DELETE")
	r.HandleFunc("/board/pages/{pageId}/activate", h.SwitchPage).Methods("POST")
	r.HandleFunc("/board/pages/{pageId}/export.png", h.ExportImage).Methods("GET")
	r.HandleFunc("/board/clear", h.ClearPage).Methods("POST")

	r.HandleFunc("/board/options", h.SetOptions).Methods("PUT")
	r.HandleFunc("/board/undo", h.Undo).Methods("POST")
	r.HandleFunc("/board/redo", h.Redo).Methods("POST")

	r.HandleFunc("/board/images", h.ImportImage).Methods("POST")
	r.HandleFunc("/board/elements/{elementId}", h.DeleteElement).Methods("DELETE")
}

type pageRequest struct {
	Name       string `json:"name"`
	Background string `json:"background"`
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.document(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	var state live.DocSyncPayload
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		state = live.DocState(e)
		return nil
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	var frame engine.Frame
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		frame = e.Render()
		return nil
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// Hit reports the topmost element at a screen position (query x and y).
func (h *Handler) Hit(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y are required"})
		return
	}

	var id string
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		id = e.HitTest(geom.Pt(x, y))
		return nil
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"elementId": id})
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Save(r.Context()); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	var page document.Page
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		id, err := e.AddPage(req.Background)
		if err != nil {
			return err
		}
		if req.Name != "" {
			if err := e.Apply(document.RenamePage{ID: id, Name: req.Name}); err != nil {
				return err
			}
		}
		page, _ = e.Document().Page(id)
		return nil
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	pageID := mux.Vars(r)["pageId"]

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var page document.Page
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		if req.Name != "" {
			if err := e.Apply(document.RenamePage{ID: pageID, Name: req.Name}); err != nil {
				return err
			}
		}
		if req.Background != "" {
			if err := e.Apply(document.SetBackground{ID: pageID, Color: req.Background}); err != nil {
				return err
			}
		}
		var ok bool
		if page, ok = e.Document().Page(pageID); !ok {
			return document.ErrPageNotFound
		}
		return nil
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	pageID := mux.Vars(r)["pageId"]
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		return e.DeletePage(pageID)
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SwitchPage(w http.ResponseWriter, r *http.Request) {
	pageID := mux.Vars(r)["pageId"]
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		return e.SwitchPage(pageID)
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearPage(w http.ResponseWriter, r *http.Request) {
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		return e.ClearPage()
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetOptions(w http.ResponseWriter, r *http.Request) {
	var opts document.DrawingOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		return e.SetOptions(opts)
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*engine.Engine).Undo)
}

func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*engine.Engine).Redo)
}

func (h *Handler) step(w http.ResponseWriter, r *http.Request, move func(*engine.Engine) bool) {
	var changed bool
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		changed = move(e)
		return nil
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (h *Handler) DeleteElement(w http.ResponseWriter, r *http.Request) {
	elementID := mux.Vars(r)["elementId"]
	err := h.hub.Do(r.Context(), func(e *engine.Engine) error {
		return e.Apply(document.DeleteElement{ID: elementID})
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportImage accepts a multipart "file" field. Decoding happens on the
// request goroutine; only the insert runs on the hub.
func (h *Handler) ImportImage(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "image import is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	img, err := h.importer.Import(r.Context(), file)
	if err != nil {
		h.handleError(w, err)
		return
	}
	err = h.hub.Do(r.Context(), func(e *engine.Engine) error {
		return e.Apply(document.AddElement{Element: img})
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h *Handler) ExportImage(w http.ResponseWriter, r *http.Request) {
	pageID := mux.Vars(r)["pageId"]
	doc, err := h.document(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	page, ok := doc.Page(pageID)
	if !ok {
		h.handleError(w, document.ErrPageNotFound)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.ExportImage(r.Context(), page, &buf); err != nil {
		h.handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+page.ID+`.png"`)
	w.Write(buf.Bytes())
}

func (h *Handler) ExportArchive(w http.ResponseWriter, r *http.Request) {
	doc, err := h.document(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.ExportArchive(r.Context(), doc, &buf); err != nil {
		h.handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="whiteboard.pdf"`)
	w.Write(buf.Bytes())
}

// document snapshots the current document. Documents are never mutated in
// place, so the copy is safe to use off the hub.
func (h *Handler) document(ctx context.Context) (document.Document, error) {
	var doc document.Document
	err := h.hub.Do(ctx, func(e *engine.Engine) error {
		doc = e.Document()
		return nil
	})
	return doc, err
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var verr *element.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, document.ErrPageNotFound), errors.Is(err, document.ErrElementNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, document.ErrLastPage), errors.Is(err, document.ErrDuplicateID),
		errors.Is(err, document.ErrKindChanged):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, document.ErrInvalidColor), errors.Is(err, element.ErrEphemeral):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, export.ErrImageTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	case errors.Is(err, export.ErrUndecodable):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, live.ErrStopped):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "board is shutting down"})
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		h.logger.Error("board request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// decodeOptional decodes a JSON body if there is one.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
