package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistancePointToSegment(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)
	tests := []struct {
		name string
		p    Point
		want float64
	}{
		{name: "above middle", p: Pt(5, 3), want: 3},
		{name: "on segment", p: Pt(7, 0), want: 0},
		{name: "past end clamps to b", p: Pt(13, 4), want: 5},
		{name: "before start clamps to a", p: Pt(-3, -4), want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistancePointToSegment(tt.p, a, b), 1e-9)
		})
	}

	t.Run("degenerate segment", func(t *testing.T) {
		assert.InDelta(t, 5, DistancePointToSegment(Pt(3, 4), Pt(0, 0), Pt(0, 0)), 1e-9)
	})
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}

	assert.True(t, r.Contains(Pt(10, 10)))
	assert.True(t, r.Contains(Pt(30, 20)))
	assert.False(t, r.Contains(Pt(31, 20)))

	assert.Equal(t, Rect{X: 5, Y: 5, Width: 30, Height: 20}, r.Expand(5))
	assert.Equal(t, Rect{X: 10, Y: 10, Width: 40, Height: 30}, r.Union(Rect{X: 40, Y: 30, Width: 10, Height: 10}))
	assert.Equal(t, r, Rect{}.Union(r))
	assert.Equal(t, Rect{X: 0, Y: 5, Width: 10, Height: 5}, Rect{X: 10, Y: 10, Width: -10, Height: -5}.Normalize())
	assert.Equal(t, Pt(20, 15), r.Center())
}

func TestBoundsOf(t *testing.T) {
	got := BoundsOf([]Point{Pt(3, 7), Pt(-1, 2), Pt(5, 4)})
	assert.Equal(t, Rect{X: -1, Y: 2, Width: 6, Height: 5}, got)
	assert.Equal(t, Rect{}, BoundsOf(nil))
}

func TestMatrixInvertRoundTrip(t *testing.T) {
	m := Translate(40, -15).Multiply(Scale(2.5, 2.5))
	p := Pt(12, 34)

	back := m.Invert().Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
	assert.True(t, m.Multiply(m.Invert()).IsIdentity())
}

func TestMatrixApplyRect(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2, 2))
	got := m.ApplyRect(Rect{X: 0, Y: 0, Width: 5, Height: 5})
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 10, Height: 10}, got)
}
