// Package live connects one editing surface to the engine over a
// websocket. The Hub goroutine is the only one that touches the engine:
// client messages, HTTP requests (Do) and finished imports are all
// serialized through its loop.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/store"
)

var ErrStopped = errors.New("hub stopped")

// Importer turns an uploaded bitmap into the command that places it.
type Importer interface {
	ImportCommand(ctx context.Context, r io.Reader) (document.Command, error)
}

type Config struct {
	BoardID          string
	Store            store.Store
	Importer         Importer
	Logger           *slog.Logger
	AutosaveInterval time.Duration
	Engine           engine.Options
}

type request struct {
	fn   func(*engine.Engine) error
	done chan error
}

type incoming struct {
	client *Client
	msg    *Message
}

type Hub struct {
	boardID  string
	store    store.Store
	importer Importer
	logger   *slog.Logger
	autosave time.Duration

	engine *engine.Engine
	prompt *promptSlot
	editor *Client

	register   chan *Client
	unregister chan *Client
	messages   chan incoming
	requests   chan request

	stopOnce sync.Once
	stop     chan struct{}
	stopped  chan struct{}

	// background work (imports) still running
	work sync.WaitGroup
}

// NewHub creates a hub editing doc.
func NewHub(doc document.Document, cfg Config) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AutosaveInterval <= 0 {
		cfg.AutosaveInterval = 30 * time.Second
	}
	slot := &promptSlot{}
	opts := cfg.Engine
	opts.Prompt = slot
	if opts.Logger == nil {
		opts.Logger = cfg.Logger
	}

	return &Hub{
		boardID:    cfg.BoardID,
		store:      cfg.Store,
		importer:   cfg.Importer,
		logger:     cfg.Logger.With("board", cfg.BoardID),
		autosave:   cfg.AutosaveInterval,
		engine:     engine.New(doc, opts),
		prompt:     slot,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		messages:   make(chan incoming, 64),
		requests:   make(chan request),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run owns the engine until Stop is called.
func (h *Hub) Run() {
	defer close(h.stopped)
	ticker := time.NewTicker(h.autosave)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.messages:
			h.handleMessage(in.client, in.msg)
		case req := <-h.requests:
			before := h.engine.Revision()
			req.done <- req.fn(h.engine)
			h.publish(before)
		case <-ticker.C:
			h.save()
		case <-h.stop:
			h.drain()
			h.save()
			if h.editor != nil {
				h.editor.closeSend()
				h.editor = nil
			}
			return
		}
	}
}

// Stop saves a dirty document and ends Run. It blocks until Run returns.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.stopped
}

// Register hands a connected client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

func (h *Hub) submit(client *Client, msg *Message) {
	select {
	case h.messages <- incoming{client: client, msg: msg}:
	case <-h.stopped:
	}
}

// Do runs fn on the hub loop and returns its error. Changes fn makes are
// pushed to the editor.
func (h *Hub) Do(ctx context.Context, fn func(*engine.Engine) error) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case h.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stop:
		return ErrStopped
	}
	// Once accepted the request always completes.
	return <-req.done
}

// drain keeps serving background results until all pending work is done,
// so Stop saves them too.
func (h *Hub) drain() {
	done := make(chan struct{})
	go func() {
		h.work.Wait()
		close(done)
	}()
	for {
		select {
		case req := <-h.requests:
			before := h.engine.Revision()
			req.done <- req.fn(h.engine)
			h.publish(before)
		case <-done:
			return
		}
	}
}

// apply is Do for background work: it is still served while the hub drains.
func (h *Hub) apply(ctx context.Context, fn func(*engine.Engine) error) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case h.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stopped:
		return ErrStopped
	}
	return <-req.done
}

// Go runs work off the loop and then applies its result on the loop. Errors
// from either step are reported to the editor. Stop applies pending results
// before its final save.
func (h *Hub) Go(name string, work func(ctx context.Context) (func(*engine.Engine) error, error)) {
	h.work.Add(1)
	go func() {
		defer h.work.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		apply, err := work(ctx)
		if err == nil {
			err = h.apply(ctx, apply)
		}
		if err != nil && !errors.Is(err, ErrStopped) {
			h.logger.Warn("background work failed", "work", name, "error", err)
			_ = h.apply(ctx, func(*engine.Engine) error {
				h.sendError(name, err)
				return nil
			})
		}
	}()
}

func (h *Hub) addClient(client *Client) {
	if h.editor != nil {
		client.Send(errorMessage("busy", "board already has an editor"))
		client.closeSend()
		h.logger.Info("editor rejected", "client", client.ClientID)
		return
	}
	h.editor = client

	welcome, _ := json.Marshal(WelcomePayload{ClientID: client.ClientID, BoardID: h.boardID})
	client.Send(&Message{Type: TypeWelcome, ClientID: client.ClientID, Payload: welcome})
	h.sendDocSync()
	h.sendFrame()

	h.logger.Info("editor joined", "client", client.ClientID)
}

func (h *Hub) removeClient(client *Client) {
	if h.editor != client {
		return
	}
	h.editor = nil
	client.closeSend()
	h.engine.PointerLeave()
	h.logger.Info("editor left", "client", client.ClientID)
}

func (h *Hub) save() {
	if err := h.saveNow(context.Background()); err != nil {
		h.logger.Error("autosave failed", "error", err)
	}
}

func (h *Hub) saveNow(ctx context.Context) error {
	if h.store == nil || !h.engine.Dirty() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rev := h.engine.Revision()
	if err := h.store.Save(ctx, h.boardID, h.engine.Document()); err != nil {
		return fmt.Errorf("save board %s: %w", h.boardID, err)
	}
	h.engine.MarkSaved(rev)
	h.logger.Info("board saved", "revision", rev)
	return nil
}

// Save persists the document now if it changed since the last save.
func (h *Hub) Save(ctx context.Context) error {
	return h.Do(ctx, func(*engine.Engine) error { return h.saveNow(ctx) })
}

// publish sends a frame and, when the document changed since before, the
// document state.
func (h *Hub) publish(before uint64) {
	if h.editor == nil {
		return
	}
	if h.engine.Revision() != before {
		h.sendDocSync()
	}
	h.sendFrame()
}

func (h *Hub) sendFrame() {
	if h.editor == nil {
		return
	}
	payload, err := json.Marshal(h.engine.Render())
	if err != nil {
		h.logger.Error("marshal frame", "error", err)
		return
	}
	h.editor.Send(&Message{Type: TypeFrame, Payload: payload})
}

func (h *Hub) sendDocSync() {
	if h.editor == nil {
		return
	}
	payload, _ := json.Marshal(DocState(h.engine))
	h.editor.Send(&Message{Type: TypeDocSync, Payload: payload})
}

func (h *Hub) sendError(code string, err error) {
	if h.editor == nil {
		return
	}
	h.editor.Send(errorMessage(code, err.Error()))
}

func errorMessage(code, text string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Code: code, Message: text})
	return &Message{Type: TypeError, Payload: payload}
}

// DocState summarizes the engine's document for a surface.
func DocState(e *engine.Engine) DocSyncPayload {
	doc := e.Document()
	pages := make([]PageSummary, len(doc.Pages))
	for i, p := range doc.Pages {
		pages[i] = PageSummary{
			ID:              p.ID,
			DisplayName:     p.DisplayName,
			BackgroundColor: p.BackgroundColor,
			Elements:        len(p.Elements),
		}
	}
	return DocSyncPayload{
		ActivePageID: doc.ActivePageID,
		Pages:        pages,
		Options:      doc.Options,
		CanUndo:      e.CanUndo(),
		CanRedo:      e.CanRedo(),
		Revision:     e.Revision(),
	}
}
