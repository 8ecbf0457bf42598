package render

import (
	"math"

	"github.com/Shreyash39/LaserPointer/internal/state"
)

// Polyline traces the captured points in order.
func Polyline(s Surface, st state.Stroke) {
	if len(st.Points) == 0 {
		return
	}
	s.MoveTo(float64(st.Points[0].X), float64(st.Points[0].Y))
	for _, p := range st.Points[1:] {
		s.LineTo(float64(p.X), float64(p.Y))
	}
}

const (
	arrowMinHead = 10
	arrowAngle   = math.Pi / 7
)

// Arrow traces the polyline plus a head at its last point. The head points
// along the direction from the last point that is at least one head length
// back, which keeps jitter at the end of a gesture from twisting it.
func Arrow(s Surface, st state.Stroke) {
	Polyline(s, st)
	n := len(st.Points)
	if n < 2 {
		return
	}

	head := math.Max(arrowMinHead, 3*float64(st.Thickness))
	tip := st.Points[n-1]
	from := st.Points[0]
	for i := n - 2; i >= 0; i-- {
		if float64(state.Dist(st.Points[i], tip)) >= head {
			from = st.Points[i]
			break
		}
	}
	dx, dy := float64(tip.X-from.X), float64(tip.Y-from.Y)
	if dx == 0 && dy == 0 {
		return
	}
	theta := math.Atan2(dy, dx)
	tx, ty := float64(tip.X), float64(tip.Y)
	for _, side := range []float64{-1, 1} {
		a := theta + math.Pi + side*arrowAngle
		s.MoveTo(tx, ty)
		s.LineTo(tx+head*math.Cos(a), ty+head*math.Sin(a))
	}
}
