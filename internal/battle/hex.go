package battle

import (
	"fmt"
	"math"
)

// Hex is an axial hex coordinate. The third cube axis is derived, so two
// fields are enough to address any hex and the zero value is a valid origin.
type Hex struct {
	Q int
	R int
}

// S returns the derived cube axis. Q + R + S always sums to zero.
func (h Hex) S() int {
	return -h.Q - h.R
}

func (h Hex) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// hexDirections are the six neighbor offsets in axial coordinates,
// ordered E, NE, NW, W, SW, SE.
var hexDirections = [6]Hex{
	{1, 0}, {1, -1}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1},
}

// Neighbor returns the adjacent hex in direction d (0..5).
func (h Hex) Neighbor(d int) Hex {
	off := hexDirections[d%6]
	return Hex{h.Q + off.Q, h.R + off.R}
}

// Neighbors returns all six adjacent hexes in direction order.
func (h Hex) Neighbors() [6]Hex {
	var out [6]Hex
	for i, off := range hexDirections {
		out[i] = Hex{h.Q + off.Q, h.R + off.R}
	}
	return out
}

// Distance returns the hex distance between a and b using the cube formula.
func (h Hex) Distance(o Hex) int {
	dq := abs(h.Q - o.Q)
	dr := abs(h.R - o.R)
	ds := abs(h.S() - o.S())
	return (dq + dr + ds) / 2
}

// LineTo traces the straight hex line from h to o inclusive. The result
// always starts at h, ends at o, and has length Distance(h,o)+1 with no
// skipped steps.
func (h Hex) LineTo(o Hex) []Hex {
	n := h.Distance(o)
	if n == 0 {
		return []Hex{h}
	}
	line := make([]Hex, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		q := lerp(float64(h.Q), float64(o.Q), t)
		r := lerp(float64(h.R), float64(o.R), t)
		s := lerp(float64(h.S()), float64(o.S()), t)
		line = append(line, cubeRound(q, r, s))
	}
	return line
}

// Range returns every hex within distance n of h, including h itself.
// Axis bounds keep the enumeration exact: for each q offset, the valid r
// offsets are the intersection of the r and s constraints.
func (h Hex) Range(n int) []Hex {
	if n < 0 {
		return nil
	}
	out := make([]Hex, 0, 1+3*n*(n+1))
	for dq := -n; dq <= n; dq++ {
		lo := max(-n, -dq-n)
		hi := min(n, -dq+n)
		for dr := lo; dr <= hi; dr++ {
			out = append(out, Hex{h.Q + dq, h.R + dr})
		}
	}
	return out
}

// cubeRound snaps fractional cube coordinates to the nearest hex. The axis
// with the largest rounding error is recomputed from the other two so the
// result stays on the q+r+s=0 plane.
func cubeRound(q, r, s float64) Hex {
	rq := math.Round(q)
	rr := math.Round(r)
	rs := math.Round(s)

	dq := math.Abs(rq - q)
	dr := math.Abs(rr - r)
	ds := math.Abs(rs - s)

	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	}
	return Hex{int(rq), int(rr)}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
