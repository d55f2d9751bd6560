package render

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/jung-kurt/gofpdf"

	"github.com/linguameet/whiteboard/internal/engine"
)

// PDF writes sheets as the pages of one PDF document. Units are points, so
// one document unit is one point.
type PDF struct {
	Images ImageSource
	Logger *slog.Logger
}

// WriteArchive writes one PDF page per sheet to w.
func (r *PDF) WriteArchive(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("archive has no pages")
	}
	p := gofpdf.New("P", "pt", "A4", "")
	p.SetCreator("linguameet whiteboard", true)
	p.SetAutoPageBreak(false, 0)
	p.SetCompression(true)

	registered := make(map[string]bool)
	for _, s := range sheets {
		// "L" would swap the explicit size.
		p.AddPageFormat("P", gofpdf.SizeType{Wd: s.Bounds.Width, Ht: s.Bounds.Height})

		pr, pg, pb := rgb255(s.Background)
		p.SetFillColor(pr, pg, pb)
		p.Rect(0, 0, s.Bounds.Width, s.Bounds.Height, "F")

		ox, oy := -s.Bounds.X, -s.Bounds.Y
		for _, cmd := range s.Commands {
			r.draw(p, cmd, ox, oy, registered)
		}
		if err := p.Error(); err != nil {
			return fmt.Errorf("pdf page %q: %w", s.Name, err)
		}
	}
	return p.Output(w)
}

func rgb255(hex string) (int, int, int) {
	c := parseHex(hex)
	return int(c.R), int(c.G), int(c.B)
}

func (r *PDF) draw(p *gofpdf.Fpdf, cmd engine.DrawCommand, ox, oy float64, registered map[string]bool) {
	alpha := cmd.Opacity
	if alpha <= 0 {
		alpha = 1
	}
	p.SetAlpha(alpha, "Normal")
	defer p.SetAlpha(1, "Normal")

	switch cmd.Op {
	case engine.OpPath, engine.OpSelection:
		if !tracePDF(p, cmd.Path, ox, oy) {
			return
		}
		style := ""
		if cmd.Fill != "" {
			p.SetFillColor(rgb255(cmd.Fill))
			style += "F"
		}
		if cmd.Stroke != "" {
			p.SetDrawColor(rgb255(cmd.Stroke))
			p.SetLineWidth(cmd.StrokeWidth)
			p.SetLineCapStyle("round")
			p.SetLineJoinStyle("round")
			p.SetDashPattern(cmd.LineDash, 0)
			style += "D"
		}
		if style == "" {
			style = "D"
		}
		p.DrawPath(style)
		p.SetDashPattern([]float64{}, 0)

	case engine.OpText:
		p.SetFont(pdfFamily(cmd.FontFamily), "", cmd.FontSize)
		p.SetTextColor(rgb255(cmd.Fill))
		p.Text(cmd.X+ox, cmd.Y+oy, p.UnicodeTranslatorFromDescriptor("")(cmd.Text))

	case engine.OpImage:
		r.drawImage(p, cmd, ox, oy, registered)
	}
}

func pdfFamily(family string) string {
	switch familyName(family) {
	case "monospace":
		return "Courier"
	default:
		return "Helvetica"
	}
}

func (r *PDF) drawImage(p *gofpdf.Fpdf, cmd engine.DrawCommand, ox, oy float64, registered map[string]bool) {
	if !registered[cmd.Source] {
		img, err := r.open(cmd.Source)
		if err != nil {
			if r.Logger != nil {
				r.Logger.Warn("image unavailable", "source", cmd.Source, "error", err)
			}
			p.SetDrawColor(153, 153, 153)
			p.SetLineWidth(1)
			p.Rect(cmd.X+ox, cmd.Y+oy, cmd.Width, cmd.Height, "D")
			return
		}
		var buf bytes.Buffer
		if err := EncodePNG(&buf, img); err != nil {
			return
		}
		p.RegisterImageOptionsReader(cmd.Source, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
		registered[cmd.Source] = true
	}
	p.ImageOptions(cmd.Source, cmd.X+ox, cmd.Y+oy, cmd.Width, cmd.Height, false,
		gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (r *PDF) open(source string) (image.Image, error) {
	if r.Images == nil {
		return nil, fmt.Errorf("no image source for %q", source)
	}
	return r.Images.OpenImage(source)
}

// tracePDF replays path commands, offset by (ox, oy). It reports false for
// an empty path.
func tracePDF(p *gofpdf.Fpdf, path []engine.PathCommand, ox, oy float64) bool {
	if len(path) == 0 {
		return false
	}
	for _, seg := range path {
		a := seg.Args()
		switch seg.Op() {
		case "M":
			if len(a) >= 2 {
				p.MoveTo(a[0]+ox, a[1]+oy)
			}
		case "L":
			if len(a) >= 2 {
				p.LineTo(a[0]+ox, a[1]+oy)
			}
		case "C":
			if len(a) >= 6 {
				p.CurveBezierCubicTo(a[0]+ox, a[1]+oy, a[2]+ox, a[3]+oy, a[4]+ox, a[5]+oy)
			}
		case "Z":
			p.ClosePath()
		}
	}
	return true
}
