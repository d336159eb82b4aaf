package sim

import (
	"testing"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/config"
	"github.com/vovakirdan/raid-kernel/internal/core"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() failed: %v", err)
	}
	e, err := NewEngine(cat, config.DefaultRules())
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return e
}

func newTestState(t *testing.T, e *Engine, seed int64) *GameState {
	t.Helper()
	s, err := e.NewState(seed, StartOptions{})
	if err != nil {
		t.Fatalf("NewState(%d) failed: %v", seed, err)
	}
	return s
}

// killEnemies takes every enemy out of play so scenarios stay isolated.
func killEnemies(s *GameState) {
	for _, u := range s.UnitsOf(FactionEnemy, false) {
		u.HP = 0
	}
}

// setEnemy turns an existing enemy into the given template at pos.
func setEnemy(t *testing.T, e *Engine, s *GameState, id, typeID string, pos core.Vec2) *Unit {
	t.Helper()
	tmpl, err := e.Catalog().Enemy(typeID)
	if err != nil {
		t.Fatalf("Enemy(%q) failed: %v", typeID, err)
	}
	u := s.Units[id]
	u.TypeID = tmpl.ID
	u.AIRole = tmpl.Role
	u.HP, u.MaxHP, u.Armor = tmpl.HP, tmpl.HP, tmpl.Armor
	u.Pos = pos
	u.Statuses = []Status{}
	return u
}

func step(t *testing.T, e *Engine, s *GameState, cmds ...Command) StepResult {
	t.Helper()
	res, err := e.Step(s, cmds)
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	return res
}

func findEvent[T Event](events Events) (T, bool) {
	for _, ev := range events {
		if v, ok := ev.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func eventsFor[T Event](events Events, match func(T) bool) []T {
	var out []T
	for _, ev := range events {
		if v, ok := ev.(T); ok && match(v) {
			out = append(out, v)
		}
	}
	return out
}
