package layout

import (
	"math"

	"moodboard/internal/domain"
)

const (
	GridSize = 10.0
	Padding  = 20.0
	// Cascade is the step used when a page has no free slot left.
	Cascade = 20.0
)

// Engine places nodes on a fixed-size page so that new items don't land
// on top of existing ones.
type Engine struct {
	gridSize float64
	padding  float64
}

func NewEngine() *Engine {
	return &Engine{
		gridSize: GridSize,
		padding:  Padding,
	}
}

// snap rounds v to the nearest grid point.
func (le *Engine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// Rect is an axis-aligned box in page pixels.
type Rect struct {
	X, Y, W, H float64
}

func (a Rect) intersects(b Rect) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X &&
		a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// NextPosition finds the first grid slot inside a pageW x pageH page where
// a newW x newH box clears every existing node by the padding. When the page
// is full it cascades from the last node's position.
func (le *Engine) NextPosition(existing []domain.Node, newW, newH, pageW, pageH float64) (float64, float64) {
	start := le.padding
	if len(existing) == 0 {
		return start, start
	}

	occupied := make([]Rect, len(existing))
	for i, n := range existing {
		occupied[i] = Rect{
			X: n.X - le.padding,
			Y: n.Y - le.padding,
			W: n.Width + le.padding*2,
			H: n.Height + le.padding*2,
		}
	}

	candidate := Rect{W: newW, H: newH}
	for y := start; y+newH <= pageH; y += le.gridSize {
		for x := start; x+newW <= pageW; x += le.gridSize {
			candidate.X = le.snap(x)
			candidate.Y = le.snap(y)

			overlaps := false
			for _, occ := range occupied {
				if candidate.intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return candidate.X, candidate.Y
			}
		}
	}

	last := existing[len(existing)-1]
	x := math.Min(last.X+Cascade, math.Max(pageW-newW, 0))
	y := math.Min(last.Y+Cascade, math.Max(pageH-newH, 0))
	return le.snap(x), le.snap(y)
}

// ArrangeGroup lays nodes out left to right from the page padding, wrapping
// rows at pageW. Sizes are kept; positions are returned in a new slice.
func (le *Engine) ArrangeGroup(nodes []domain.Node, pageW float64) []domain.Node {
	out := domain.CloneNodes(nodes)
	x, y := le.padding, le.padding
	rowHeight := 0.0

	for i := range out {
		if x > le.padding && x+out[i].Width > pageW-le.padding {
			x = le.padding
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}

		out[i].X = le.snap(x)
		out[i].Y = le.snap(y)

		if out[i].Height > rowHeight {
			rowHeight = out[i].Height
		}
		x += le.snap(out[i].Width + le.padding)
	}

	return out
}
