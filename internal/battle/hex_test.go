package battle

import "testing"

func TestHexDistance(t *testing.T) {
	cases := []struct {
		a, b Hex
		want int
	}{
		{Hex{0, 0}, Hex{0, 0}, 0},
		{Hex{0, 0}, Hex{1, 0}, 1},
		{Hex{0, 0}, Hex{0, 1}, 1},
		{Hex{0, 0}, Hex{1, -1}, 1},
		{Hex{0, 0}, Hex{2, 0}, 2},
		{Hex{0, 0}, Hex{2, -1}, 2},
		{Hex{0, 0}, Hex{-3, 3}, 3},
		{Hex{2, 3}, Hex{5, 1}, 3},
		{Hex{0, 0}, Hex{5, 5}, 10},
	}
	for _, c := range cases {
		if got := c.a.Distance(c.b); got != c.want {
			t.Errorf("Distance(%v,%v) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := c.b.Distance(c.a); got != c.want {
			t.Errorf("Distance(%v,%v) = %d, want %d (symmetry)", c.b, c.a, got, c.want)
		}
	}
}

func TestHexDistanceTriangleInequality(t *testing.T) {
	var coords []Hex
	for q := -4; q <= 4; q += 2 {
		for r := -4; r <= 4; r += 2 {
			coords = append(coords, Hex{q, r})
		}
	}
	for _, a := range coords {
		for _, b := range coords {
			for _, c := range coords {
				if ac, via := a.Distance(c), a.Distance(b)+b.Distance(c); ac > via {
					t.Fatalf("Distance(%v,%v) = %d exceeds detour via %v = %d", a, c, ac, b, via)
				}
			}
		}
	}
}

func TestHexNeighborsAtDistanceOne(t *testing.T) {
	h := Hex{4, 7}
	seen := map[Hex]bool{}
	for _, n := range h.Neighbors() {
		if d := h.Distance(n); d != 1 {
			t.Errorf("neighbor %v at distance %d", n, d)
		}
		if seen[n] {
			t.Errorf("duplicate neighbor %v", n)
		}
		seen[n] = true
	}
	if len(seen) != 6 {
		t.Errorf("got %d distinct neighbors, want 6", len(seen))
	}
}

func TestHexCubeAxisSumsToZero(t *testing.T) {
	for q := -3; q <= 3; q++ {
		for r := -3; r <= 3; r++ {
			h := Hex{q, r}
			if h.Q+h.R+h.S() != 0 {
				t.Errorf("%v: q+r+s = %d", h, h.Q+h.R+h.S())
			}
		}
	}
}

func TestHexLineTo(t *testing.T) {
	cases := []struct{ a, b Hex }{
		{Hex{0, 0}, Hex{0, 0}},
		{Hex{0, 0}, Hex{5, 0}},
		{Hex{0, 0}, Hex{3, -3}},
		{Hex{2, 2}, Hex{-1, 5}},
		{Hex{0, 0}, Hex{7, 2}},
	}
	for _, c := range cases {
		line := c.a.LineTo(c.b)
		wantLen := c.a.Distance(c.b) + 1
		if len(line) != wantLen {
			t.Errorf("LineTo(%v,%v): len %d, want %d", c.a, c.b, len(line), wantLen)
			continue
		}
		if line[0] != c.a || line[len(line)-1] != c.b {
			t.Errorf("LineTo(%v,%v): endpoints %v..%v", c.a, c.b, line[0], line[len(line)-1])
		}
		for i := 1; i < len(line); i++ {
			if line[i-1].Distance(line[i]) != 1 {
				t.Errorf("LineTo(%v,%v): step %v -> %v is not adjacent", c.a, c.b, line[i-1], line[i])
			}
		}
	}
}

func TestHexRange(t *testing.T) {
	for n := 0; n <= 4; n++ {
		hexes := Hex{0, 0}.Range(n)
		want := 1 + 3*n*(n+1)
		if len(hexes) != want {
			t.Errorf("Range(%d): %d hexes, want %d", n, len(hexes), want)
		}
		for _, h := range hexes {
			if d := h.Distance(Hex{0, 0}); d > n {
				t.Errorf("Range(%d) contains %v at distance %d", n, h, d)
			}
		}
	}
	if got := (Hex{0, 0}).Range(-1); got != nil {
		t.Errorf("Range(-1) = %v, want nil", got)
	}
}
