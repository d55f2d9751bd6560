package render

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/geom"
)

// RenderFrame paints a live frame at screen resolution. Each command is
// mapped through its own transform first, so text is rasterized at the
// zoomed size rather than scaled as a bitmap.
func (r *Raster) RenderFrame(ctx context.Context, f engine.Frame, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("render frame: empty surface %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(rgb(f.Background))
	dc.Clear()
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	faces := newFaceSet(r.Fonts)
	for _, cmd := range f.Commands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.draw(dc, ToScreen(cmd), faces)
	}
	return dc.Image(), nil
}

// ToScreen applies cmd.Transform to its geometry and returns an untransformed
// command. Lengths scale by the transform's uniform scale factor.
func ToScreen(cmd engine.DrawCommand) engine.DrawCommand {
	if len(cmd.Transform) != 6 {
		return cmd
	}
	var m geom.Matrix2D
	copy(m[:], cmd.Transform)
	if m.IsIdentity() {
		cmd.Transform = nil
		return cmd
	}
	k := math.Sqrt(math.Abs(m.Determinant()))

	path := make([]engine.PathCommand, len(cmd.Path))
	for i, seg := range cmd.Path {
		args := seg.Args()
		out := engine.PathCommand{seg.Op()}
		for j := 0; j+1 < len(args); j += 2 {
			p := m.Apply(geom.Pt(args[j], args[j+1]))
			out = append(out, p.X, p.Y)
		}
		path[i] = out
	}
	cmd.Path = path

	if cmd.LineDash != nil {
		dash := make([]float64, len(cmd.LineDash))
		for i, d := range cmd.LineDash {
			dash[i] = d * k
		}
		cmd.LineDash = dash
	}

	p := m.Apply(geom.Pt(cmd.X, cmd.Y))
	cmd.X, cmd.Y = p.X, p.Y
	cmd.Width *= k
	cmd.Height *= k
	cmd.StrokeWidth *= k
	cmd.FontSize *= k
	cmd.Transform = nil
	return cmd
}
