// Package render draws observations as ASCII maps for the inspect command.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/raid-kernel/internal/core"
	"github.com/vovakirdan/raid-kernel/internal/sim"
)

// Map glyphs.
const (
	GlyphWall       = '#'
	GlyphFloor      = '.'
	GlyphHalfCover  = 'h'
	GlyphFullCover  = 'H'
	GlyphSmoke      = '~'
	GlyphDoorClosed = '+'
	GlyphDoorLocked = '='
	GlyphDoorOpen   = '/'
	GlyphConsole    = 'C'
	GlyphConsoleOff = 'c'
	GlyphCrate      = 'L'
	GlyphCrateEmpty = 'l'
	GlyphExtraction = 'E'
	GlyphDead       = 'x'
)

// Draw paints the grid, objects and units of obs into a new screen the size
// of the grid. Living units are drawn last so they sit on top of terrain.
func Draw(obs sim.Observation) *core.Screen {
	scr := core.NewScreen(obs.Grid.Width, obs.Grid.Height)

	states := make(map[string]string, len(obs.VisibleObjects))
	for _, obj := range obs.VisibleObjects {
		states[obj.ID] = obj.State
	}

	for _, t := range obs.Grid.Tiles {
		r, c := tileGlyph(t, states)
		scr.Set(t.X, t.Y, r, c)
	}

	for _, u := range obs.Units {
		if u.HP <= 0 {
			scr.Set(u.Pos.X, u.Pos.Y, GlyphDead, core.ColorDead)
		}
	}
	for _, u := range obs.Units {
		if u.HP > 0 {
			scr.Set(u.Pos.X, u.Pos.Y, unitGlyph(u), unitColor(u))
		}
	}
	return scr
}

func tileGlyph(t sim.Tile, states map[string]string) (rune, core.Color) {
	switch {
	case t.Terrain == sim.TerrainWall:
		return GlyphWall, core.ColorWall
	case t.DoorID != "":
		switch states[t.DoorID] {
		case "open":
			return GlyphDoorOpen, core.ColorDoor
		case "locked":
			return GlyphDoorLocked, core.ColorDoor
		}
		return GlyphDoorClosed, core.ColorDoor
	case t.ConsoleID != "":
		if states[t.ConsoleID] == "used" {
			return GlyphConsoleOff, core.ColorConsole
		}
		return GlyphConsole, core.ColorConsole
	case t.CrateID != "":
		if states[t.CrateID] == "opened" {
			return GlyphCrateEmpty, core.ColorCrate
		}
		return GlyphCrate, core.ColorCrate
	case t.Extraction:
		return GlyphExtraction, core.ColorExtraction
	case t.Smoke > 0:
		return GlyphSmoke, core.ColorSmoke
	case t.Cover == sim.CoverFull:
		return GlyphFullCover, core.ColorCover
	case t.Cover == sim.CoverHalf:
		return GlyphHalfCover, core.ColorCover
	}
	return GlyphFloor, core.ColorFloor
}

// unitGlyph is the last character of a drone id (drone-3 -> '3') or the
// first letter of an enemy type (rusher -> 'r').
func unitGlyph(u sim.ObservedUnit) rune {
	if u.Faction == sim.FactionDrone {
		if u.ID == "" {
			return '@'
		}
		return rune(u.ID[len(u.ID)-1])
	}
	if u.TypeID == "" {
		return '?'
	}
	return rune(u.TypeID[0])
}

func unitColor(u sim.ObservedUnit) core.Color {
	if u.Faction == sim.FactionDrone {
		return core.ColorDrone
	}
	return core.ColorEnemy
}

func styleFor(c core.Color) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(c.ANSI256()))
	if c == core.ColorDrone || c == core.ColorEnemy {
		s = s.Bold(true)
	}
	return s
}

// Styled converts a screen to coloured text.
// Groups adjacent cells with the same colour to minimise ANSI escape sequences.
func Styled(scr *core.Screen) string {
	var sb strings.Builder
	sb.Grow(scr.Width()*scr.Height()*2 + scr.Height())

	for y := 0; y < scr.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		x := 0
		for x < scr.Width() {
			start := scr.Get(x, y).Color
			var run strings.Builder
			for x < scr.Width() {
				cell := scr.Get(x, y)
				if cell.Color != start {
					break
				}
				run.WriteRune(cell.Glyph)
				x++
			}
			sb.WriteString(styleFor(start).Render(run.String()))
		}
	}
	return sb.String()
}

// Summary lists the turn header and one line per unit and inventory.
func Summary(obs sim.Observation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Turn %d  Phase %s  Seed %d  Power %d", obs.Turn, obs.Phase, obs.Seed, obs.Power)
	if obs.LowPowerState.Active {
		fmt.Fprintf(&sb, "  LOW POWER (%d)", obs.LowPowerState.Turns)
	}
	sb.WriteRune('\n')

	inv := make(map[string]sim.ObservedInventory, len(obs.Inventory))
	for _, i := range obs.Inventory {
		inv[i.UnitID] = i
	}

	for _, u := range obs.Units {
		state := fmt.Sprintf("hp %d armor %d", u.HP, u.Armor)
		if u.HP <= 0 {
			state = "down"
		}
		fmt.Fprintf(&sb, "  %-9s %-14s %-8s %s", u.ID, u.TypeID, u.Pos, state)
		for _, st := range u.Statuses {
			fmt.Fprintf(&sb, " %s(%d)", st.ID, st.Turns)
		}
		if i, ok := inv[u.ID]; ok {
			fmt.Fprintf(&sb, "  pack %d/%d", i.BackpackUsed, i.BackpackCapacity)
			if i.SealedItem != nil {
				fmt.Fprintf(&sb, " sealed %s", *i.SealedItem)
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
