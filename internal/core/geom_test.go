package core

import "testing"

func TestManhattan(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec2
		expected int
	}{
		{"same tile", V(3, 3), V(3, 3), 0},
		{"horizontal", V(1, 1), V(5, 1), 4},
		{"vertical", V(2, 7), V(2, 1), 6},
		{"diagonal", V(0, 0), V(3, 4), 7},
		{"negative side", V(-2, 1), V(1, -1), 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Manhattan(tc.b); got != tc.expected {
				t.Errorf("Manhattan() = %d, expected %d", got, tc.expected)
			}
			if got := tc.b.Manhattan(tc.a); got != tc.expected {
				t.Errorf("Manhattan() (reversed) = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestNeighbors4Order(t *testing.T) {
	got := V(5, 5).Neighbors4()
	expected := [4]Vec2{V(6, 5), V(4, 5), V(5, 6), V(5, 4)}
	if got != expected {
		t.Errorf("Neighbors4() = %v, expected %v", got, expected)
	}
}

func TestVec2String(t *testing.T) {
	if s := V(4, -2).String(); s != "(4,-2)" {
		t.Errorf("String() = %q, expected %q", s, "(4,-2)")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},   // within range
		{-5, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tc := range tests {
		result := Clamp(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestAbsSign(t *testing.T) {
	tests := []struct {
		x, abs, sign int
	}{
		{-7, 7, -1},
		{0, 0, 0},
		{3, 3, 1},
	}

	for _, tc := range tests {
		if got := Abs(tc.x); got != tc.abs {
			t.Errorf("Abs(%d) = %d, expected %d", tc.x, got, tc.abs)
		}
		if got := Sign(tc.x); got != tc.sign {
			t.Errorf("Sign(%d) = %d, expected %d", tc.x, got, tc.sign)
		}
	}
}
