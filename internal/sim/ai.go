package sim

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
)

// enemyMoveTiles bounds how far an enemy advances per turn.
const enemyMoveTiles = 3

// BuildEnemyCommands produces one command per living, non-EMP enemy in id
// order: shoot the nearest drone if possible, otherwise advance toward it
// unless the enemy holds position. An enemy of an unknown type is an error.
func (e *Engine) BuildEnemyCommands(s *GameState) ([]Command, error) {
	drones := s.UnitsOf(FactionDrone, true)
	var cmds []Command

	for _, enemy := range s.UnitsOf(FactionEnemy, true) {
		if enemy.HasStatus(catalog.StatusEMP) {
			continue
		}
		tmpl, err := e.cat.Enemy(enemy.TypeID)
		if err != nil {
			return nil, fmt.Errorf("sim: unit %s: %w", enemy.ID, err)
		}
		target := nearestDrone(enemy, drones)
		if target == nil {
			continue
		}
		if CanShoot(s, enemy, target, tmpl.Weapon.Range) {
			cmds = append(cmds, ShootCommand{UnitID: enemy.ID, TargetID: target.ID})
			continue
		}
		if holdsPosition(enemy.AIRole) {
			continue
		}
		path := FindPath(&s.Grid, s.Doors, enemy.Pos, target.Pos)
		if len(path) > enemyMoveTiles+1 {
			path = path[:enemyMoveTiles+1]
		}
		if len(path) > 1 {
			cmds = append(cmds, MoveCommand{UnitID: enemy.ID, Path: path})
		}
	}
	return cmds, nil
}

// nearestDrone picks the closest drone by Manhattan distance; drones are
// sorted by id so the first one found wins ties.
func nearestDrone(enemy *Unit, drones []*Unit) *Unit {
	var best *Unit
	bestDist := 0
	for _, d := range drones {
		dist := enemy.Pos.Manhattan(d.Pos)
		if best == nil || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

func holdsPosition(role string) bool {
	return strings.Contains(role, "turret") || role == "camera"
}
