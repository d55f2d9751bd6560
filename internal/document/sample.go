package document

import (
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/typeid"
)

// NewSampleDocument builds a two page lesson board used by the demo
// surfaces and by tests that need something non-trivial to render.
func NewSampleDocument() Document {
	vocab := typeid.NewPageID()
	grammar := typeid.NewPageID()

	doc := New(vocab, DefaultBackground)
	doc.Pages[0].DisplayName = "Vocabulary"
	doc.Pages[0].Elements = element.List{
		element.Text{
			ID: typeid.NewElementID(), X: 60, Y: 80,
			Text: "la pomme = the apple", StrokeColor: "#1f2937", FontSize: 32, FontFamily: "sans-serif",
		},
		element.Rectangle{
			ID: typeid.NewElementID(), X: 40, Y: 40, Width: 420, Height: 70,
			StrokeColor: "#2563eb", StrokeWidth: 2,
		},
		element.Highlighter{
			ID:          typeid.NewElementID(),
			Points:      []geom.Point{{X: 60, Y: 70}, {X: 160, Y: 70}},
			StrokeColor: "#facc15", StrokeWidth: 6 * element.HighlighterWidthFactor,
		},
		element.Circle{
			ID: typeid.NewElementID(), X: 560, Y: 75, Radius: 30,
			StrokeColor: "#dc2626", StrokeWidth: 3, FillColor: "#fee2e2",
		},
	}

	doc.Pages = append(doc.Pages, Page{
		ID:              grammar,
		DisplayName:     "Grammar",
		BackgroundColor: "#fefce8",
		Elements: element.List{
			element.Text{
				ID: typeid.NewElementID(), X: 60, Y: 80,
				Text: "je suis / tu es / il est", StrokeColor: "#111827", FontSize: 28, FontFamily: "sans-serif",
			},
			element.Line{
				ID: typeid.NewElementID(), X1: 60, Y1: 100, X2: 380, Y2: 100,
				StrokeColor: "#16a34a", StrokeWidth: 2,
			},
			element.Freehand{
				ID:          typeid.NewElementID(),
				Points:      []geom.Point{{X: 400, Y: 60}, {X: 410, Y: 75}, {X: 430, Y: 50}},
				StrokeColor: "#16a34a", StrokeWidth: 3,
			},
		},
	})
	return doc
}
