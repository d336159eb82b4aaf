package core

// Color tags a screen cell with a palette slot.
// Renderers map slots to terminal colours; plain dumps ignore them.
type Color uint8

// Palette slots used by map dumps.
const (
	ColorDefault Color = iota
	ColorWall
	ColorFloor
	ColorCover
	ColorSmoke
	ColorDoor
	ColorConsole
	ColorCrate
	ColorExtraction
	ColorDrone
	ColorEnemy
	ColorDead
)

// ANSI256 returns the 256-colour code for a palette slot.
func (c Color) ANSI256() string {
	switch c {
	case ColorWall:
		return "240"
	case ColorFloor:
		return "236"
	case ColorCover:
		return "180"
	case ColorSmoke:
		return "250"
	case ColorDoor:
		return "214"
	case ColorConsole:
		return "51"
	case ColorCrate:
		return "178"
	case ColorExtraction:
		return "46"
	case ColorDrone:
		return "39"
	case ColorEnemy:
		return "196"
	case ColorDead:
		return "88"
	default:
		return "255"
	}
}
