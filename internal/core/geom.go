// Package core provides the small value types shared by the raid kernel and
// its tooling: grid coordinates and a character buffer for map dumps.
// It has no external dependencies so the simulation stays pure and testable.
package core

import "fmt"

// Vec2 is a tile coordinate on the raid grid.
// X increases to the right, Y increases downward.
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// V is a convenience constructor for Vec2.
func V(x, y int) Vec2 {
	return Vec2{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (v Vec2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

// Add returns a new Vec2 offset by (dx, dy).
func (v Vec2) Add(dx, dy int) Vec2 {
	return Vec2{X: v.X + dx, Y: v.Y + dy}
}

// Equal returns true if two coordinates are the same.
func (v Vec2) Equal(other Vec2) bool {
	return v.X == other.X && v.Y == other.Y
}

// Manhattan returns the Manhattan distance to another coordinate.
func (v Vec2) Manhattan(other Vec2) int {
	return Abs(v.X-other.X) + Abs(v.Y-other.Y)
}

// Neighbors4 lists the orthogonal neighbours in expansion order: east, west,
// south, north. Pathfinding depends on this order for tie-breaking.
func (v Vec2) Neighbors4() [4]Vec2 {
	return [4]Vec2{v.Add(1, 0), v.Add(-1, 0), v.Add(0, 1), v.Add(0, -1)}
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Sign returns -1, 0 or 1 depending on the sign of x.
func Sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
