package state

import "github.com/chewxy/math32"

// Point is a surface-local position.
type Point struct{ X, Y float32 }

// Sub returns p translated by -o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float32 {
	return math32.Hypot(a.X-b.X, a.Y-b.Y)
}

// Area is an axis-aligned rectangle on the surface.
type Area struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// BoundsOf returns the smallest area containing every point.
// The zero Area is returned for an empty slice.
func BoundsOf(points []Point) Area {
	if len(points) == 0 {
		return Area{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Area{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inflate grows the area by pad on every side.
func (a Area) Inflate(pad float32) Area {
	return Area{
		X:      a.X - pad,
		Y:      a.Y - pad,
		Width:  a.Width + 2*pad,
		Height: a.Height + 2*pad,
	}
}

// Contains reports whether p lies inside a, edges included.
func (a Area) Contains(p Point) bool {
	return p.X >= a.X && p.X <= a.X+a.Width &&
		p.Y >= a.Y && p.Y <= a.Y+a.Height
}

// Overlaps reports whether the two areas share any point.
func (a Area) Overlaps(b Area) bool {
	return !(a.X+a.Width < b.X || b.X+b.Width < a.X ||
		a.Y+a.Height < b.Y || b.Y+b.Height < a.Y)
}
