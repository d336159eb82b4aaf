package sim

import (
	"errors"
	"testing"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/core"
)

func enemyCommands(t *testing.T, e *Engine, s *GameState) []Command {
	t.Helper()
	cmds, err := e.BuildEnemyCommands(s)
	if err != nil {
		t.Fatalf("BuildEnemyCommands() failed: %v", err)
	}
	return cmds
}

func enemyCommand(cmds []Command, id string) Command {
	for _, c := range cmds {
		if c.Actor() == id {
			return c
		}
	}
	return nil
}

func TestEnemyShootsNearestDrone(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 11)
	s.Units["enemy-1"].Pos = core.V(3, 1)
	s.Units["drone-1"].Pos = core.V(4, 1)

	cmd := enemyCommand(enemyCommands(t, e, s), "enemy-1")
	shoot, ok := cmd.(ShootCommand)
	if !ok {
		t.Fatalf("enemy-1 command = %#v, expected SHOOT", cmd)
	}
	// drone-1 and drone-2 are both one tile away; the smaller id wins.
	if shoot.TargetID != "drone-1" {
		t.Errorf("target = %s, expected drone-1", shoot.TargetID)
	}
}

func TestEnemyAdvancesWhenOutOfRange(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 11)
	killEnemies(s)
	start := core.V(6, 6)
	setEnemy(t, e, s, "enemy-1", "rusher", start)

	cmds := enemyCommands(t, e, s)
	if len(cmds) != 1 {
		t.Fatalf("commands = %v, expected one", cmds)
	}
	move, ok := cmds[0].(MoveCommand)
	if !ok {
		t.Fatalf("command = %#v, expected MOVE", cmds[0])
	}
	if len(move.Path) != enemyMoveTiles+1 || move.Path[0] != start {
		t.Errorf("path = %v, expected %d tiles from %v", move.Path, enemyMoveTiles+1, start)
	}
	target := core.V(2, 2)
	if got := move.Path[len(move.Path)-1].Manhattan(target); got != start.Manhattan(target)-enemyMoveTiles {
		t.Errorf("path ends %d tiles from drone-4, expected %d", got, start.Manhattan(target)-enemyMoveTiles)
	}
}

func TestEnemyHoldsOrSkips(t *testing.T) {
	tests := []struct {
		name   string
		typeID string
		pos    core.Vec2
		status catalog.StatusID
		dead   bool
	}{
		{"turret behind a door", "sentry-turret", core.V(13, 4), "", false},
		{"camera behind a door", "watcher-cam", core.V(13, 4), "", false},
		{"emp", "trooper", core.V(4, 1), catalog.StatusEMP, false},
		{"dead", "trooper", core.V(4, 1), "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			s := newTestState(t, e, 11)
			killEnemies(s)
			u := setEnemy(t, e, s, "enemy-1", tc.typeID, tc.pos)
			if tc.status != "" {
				ApplyStatus(u, tc.status, 1)
			}
			if tc.dead {
				u.HP = 0
			}
			if cmds := enemyCommands(t, e, s); len(cmds) != 0 {
				t.Errorf("commands = %v, expected none", cmds)
			}
		})
	}
}

func TestEnemyWithoutDronesIdles(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 11)
	for _, u := range s.UnitsOf(FactionDrone, false) {
		u.HP = 0
	}
	if cmds := enemyCommands(t, e, s); len(cmds) != 0 {
		t.Errorf("commands = %v, expected none", cmds)
	}
}

func TestUnknownTemplateIsAnError(t *testing.T) {
	tests := []struct {
		name string
		unit string
		cmds []Command
	}{
		{"enemy", "enemy-1", nil},
		{"drone", "drone-1", []Command{DashCommand{UnitID: "drone-1", Path: []core.Vec2{core.V(1, 1), core.V(1, 2)}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			s := newTestState(t, e, 11)
			s.Units[tc.unit].TypeID = "prototype-x"

			_, err := e.Step(s, tc.cmds)
			if !errors.Is(err, catalog.ErrUnknownUnit) {
				t.Errorf("Step() error = %v, expected ErrUnknownUnit", err)
			}
		})
	}
}

func TestBuildEnemyCommandsUnknownType(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 11)
	s.Units["enemy-2"].TypeID = "prototype-x"

	if _, err := e.BuildEnemyCommands(s); !errors.Is(err, catalog.ErrUnknownUnit) {
		t.Errorf("BuildEnemyCommands() error = %v, expected ErrUnknownUnit", err)
	}
}
