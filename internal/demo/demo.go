// Package demo replays a fixed set of annotation gestures through an engine.
// It backs the headless snapshot mode and the -demo flag.
package demo

import (
	"math"

	"github.com/Shreyash39/LaserPointer/internal/state"
)

// Gesture is one pointer drag drawn with a given tool and color.
type Gesture struct {
	Tool   state.Tool
	Color  state.Color
	Points []state.Point
}

// Gestures returns the demo annotations for a viewport of the given size:
// a circle, an underline, an arrow and a freehand squiggle.
func Gestures(width, height float32) []Gesture {
	cx, cy := width*0.25, height*0.35
	r := min(width, height) * 0.12

	circle := make([]state.Point, 0, 33)
	for i := 0; i <= 32; i++ {
		a := 2 * math.Pi * float64(i) / 32
		circle = append(circle, state.Point{
			X: cx + r*float32(math.Cos(a)),
			Y: cy + r*float32(math.Sin(a)),
		})
	}

	underline := []state.Point{
		{X: width * 0.45, Y: height * 0.4},
		{X: width * 0.6, Y: height * 0.41},
		{X: width * 0.75, Y: height * 0.4},
	}

	arrow := []state.Point{
		{X: width * 0.3, Y: height * 0.8},
		{X: width * 0.45, Y: height * 0.72},
		{X: width * 0.6, Y: height * 0.65},
	}

	squiggle := make([]state.Point, 0, 25)
	for i := 0; i <= 24; i++ {
		x := width*0.65 + float32(i)*width*0.01
		y := height*0.75 + float32(math.Sin(float64(i)/3))*height*0.04
		squiggle = append(squiggle, state.Point{X: x, Y: y})
	}

	return []Gesture{
		{Tool: state.ToolCircle, Color: "#FF3B30", Points: circle},
		{Tool: state.ToolUnderline, Color: "#007AFF", Points: underline},
		{Tool: state.ToolArrow, Color: "#34C759", Points: arrow},
		{Tool: state.ToolFreehand, Color: "#FF9500", Points: squiggle},
	}
}

// Replay draws the gestures as pen strokes. The engine's mode, tool, color
// and active flag are restored afterwards.
func Replay(e *state.Engine, gestures []Gesture) {
	prev := e.State()
	e.SetMode(state.ModePen)
	e.SetActive(true)

	for _, g := range gestures {
		if len(g.Points) == 0 {
			continue
		}
		e.SetTool(g.Tool)
		e.SetColor(g.Color)
		e.PointerDown(state.PointerEvent{Position: g.Points[0]})
		for _, p := range g.Points[1:] {
			e.PointerMove(state.PointerEvent{Position: p})
		}
		e.PointerUp()
	}

	e.SetTool(prev.Tool)
	e.SetColor(prev.Color)
	e.SetActive(prev.Active)
	e.SetMode(prev.Mode)
}
