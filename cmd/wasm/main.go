//go:build js && wasm

package main

import (
	"encoding/json"
	"strconv"
	"syscall/js"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/store"
	"github.com/linguameet/whiteboard/internal/tool"
	"github.com/linguameet/whiteboard/internal/typeid"
)

var eng *engine.Engine

// canvasMeasurer measures text with an offscreen 2D canvas so hit tests
// agree with what the browser paints.
type canvasMeasurer struct {
	ctx js.Value
}

func newCanvasMeasurer() *canvasMeasurer {
	canvas := js.Global().Get("document").Call("createElement", "canvas")
	return &canvasMeasurer{ctx: canvas.Call("getContext", "2d")}
}

func (m *canvasMeasurer) MeasureText(text, family string, size float64) float64 {
	m.ctx.Set("font", js.ValueOf(formatFont(family, size)))
	return m.ctx.Call("measureText", text).Get("width").Float()
}

func formatFont(family string, size float64) string {
	return strconv.FormatFloat(size, 'f', -1, 64) + "px " + family
}

// prompt asks for text with window.prompt; cancel yields "".
func prompt(geom.Point) string {
	v := js.Global().Call("prompt", "Text:")
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func main() {
	eng = engine.New(document.New(typeid.NewPageID(), ""), engine.Options{
		Measurer: newCanvasMeasurer(),
		Prompt:   tool.PromptFunc(prompt),
	})

	whiteboard := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	whiteboard.Set("loadDocument", js.FuncOf(loadDocument))
	whiteboard.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	whiteboard.Set("setOptions", js.FuncOf(setOptions))
	whiteboard.Set("setTool", js.FuncOf(setTool))
	whiteboard.Set("pointerDown", js.FuncOf(pointerDown))
	whiteboard.Set("pointerMove", js.FuncOf(pointerMove))
	whiteboard.Set("pointerUp", js.FuncOf(pointerUp))
	whiteboard.Set("pointerLeave", js.FuncOf(pointerLeave))
	whiteboard.Set("addPage", js.FuncOf(addPage))
	whiteboard.Set("deletePage", js.FuncOf(deletePage))
	whiteboard.Set("switchPage", js.FuncOf(switchPage))
	whiteboard.Set("clearPage", js.FuncOf(clearPage))
	whiteboard.Set("undo", js.FuncOf(undo))
	whiteboard.Set("redo", js.FuncOf(redo))
	whiteboard.Set("pan", js.FuncOf(pan))
	whiteboard.Set("zoom", js.FuncOf(zoom))
	whiteboard.Set("resetView", js.FuncOf(resetView))
	whiteboard.Set("deleteSelection", js.FuncOf(deleteSelection))

	// --- Queries (frontend ← engine) ---
	whiteboard.Set("render", js.FuncOf(render))
	whiteboard.Set("hitTest", js.FuncOf(hitTest))
	whiteboard.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	whiteboard.Set("getDocument", js.FuncOf(getDocument))
	whiteboard.Set("getSelection", js.FuncOf(getSelection))
	whiteboard.Set("isDirty", js.FuncOf(isDirty))
	whiteboard.Set("markSaved", js.FuncOf(markSaved))

	js.Global().Set("whiteboardEngine", whiteboard)

	// Signal that WASM is ready
	js.Global().Set("whiteboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true})
}

func point(args []js.Value) (geom.Point, bool) {
	if len(args) < 2 {
		return geom.Point{}, false
	}
	return geom.Pt(args[0].Float(), args[1].Float()), true
}

func stringArg(args []js.Value) string {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return ""
	}
	return args[0].String()
}

// --- Command Handlers ---

// loadDocument takes a saved board ({schemaVersion, document}).
func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing document JSON"})
	}
	doc, err := store.Decode([]byte(args[0].String()))
	if err != nil {
		return result(err)
	}
	return result(eng.Load(doc))
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	return result(eng.Load(document.NewSampleDocument()))
}

func setOptions(this js.Value, args []js.Value) any {
	var opts document.DrawingOptions
	if err := json.Unmarshal([]byte(stringArg(args)), &opts); err != nil {
		return result(err)
	}
	return result(eng.SetOptions(opts))
}

func setTool(this js.Value, args []js.Value) any {
	return result(eng.SetTool(document.Tool(stringArg(args))))
}

func pointerDown(this js.Value, args []js.Value) any {
	p, ok := point(args)
	if !ok {
		return nil
	}
	return result(eng.PointerDown(p))
}

func pointerMove(this js.Value, args []js.Value) any {
	if p, ok := point(args); ok {
		eng.PointerMove(p)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) any {
	return result(eng.PointerUp())
}

func pointerLeave(this js.Value, args []js.Value) any {
	eng.PointerLeave()
	return nil
}

func addPage(this js.Value, args []js.Value) any {
	id, err := eng.AddPage(stringArg(args))
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "pageId": id})
}

func deletePage(this js.Value, args []js.Value) any {
	return result(eng.DeletePage(stringArg(args)))
}

func switchPage(this js.Value, args []js.Value) any {
	return result(eng.SwitchPage(stringArg(args)))
}

func clearPage(this js.Value, args []js.Value) any {
	return result(eng.ClearPage())
}

func undo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Redo())
}

func pan(this js.Value, args []js.Value) any {
	if d, ok := point(args); ok {
		eng.Pan(d.X, d.Y)
	}
	return nil
}

// zoom(x, y, in) zooms around a screen anchor.
func zoom(this js.Value, args []js.Value) any {
	p, ok := point(args)
	if !ok {
		return nil
	}
	if len(args) > 2 && !args[2].Bool() {
		eng.ZoomOut(p)
	} else {
		eng.ZoomIn(p)
	}
	return nil
}

func resetView(this js.Value, args []js.Value) any {
	eng.ResetView()
	return nil
}

func deleteSelection(this js.Value, args []js.Value) any {
	return result(eng.DeleteSelection())
}

// --- Query Handlers ---

// render(width, height) compiles the frame for a canvas of that size;
// without a size nothing is culled.
func render(this js.Value, args []js.Value) any {
	frame := eng.Render()
	if size, ok := point(args); ok {
		frame = eng.RenderVisible(size.X, size.Y)
	}
	out, _ := engine.FrameToJSON(frame)
	return js.ValueOf(out)
}

func hitTest(this js.Value, args []js.Value) any {
	p, ok := point(args)
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(p))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	box, ok := eng.SelectionBounds()
	if !ok {
		return js.Null()
	}
	return js.ValueOf(map[string]any{"x": box.X, "y": box.Y, "width": box.Width, "height": box.Height})
}

// getDocument returns the board in its saved form.
func getDocument(this js.Value, args []js.Value) any {
	data, err := store.Encode(eng.Document())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getSelection(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Selection())
}

func isDirty(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Dirty())
}

func markSaved(this js.Value, args []js.Value) any {
	eng.MarkSaved(eng.Revision())
	return nil
}
