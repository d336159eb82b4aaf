// Package autopilot holds scripted squad controllers used to drive the
// kernel without a human: replay generation, smoke runs and benchmarks.
package autopilot

import (
	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/registry"
	"github.com/vovakirdan/raid-kernel/internal/sim"
)

func init() {
	registry.Register("hold", func(*catalog.Catalog) registry.Policy { return Hold{} })
}

// Hold never issues a command. The squad only pays upkeep, which makes it
// the reference run for the power-out clock.
type Hold struct{}

func (Hold) ID() string    { return "hold" }
func (Hold) Title() string { return "Hold Position" }

func (Hold) Plan(sim.Observation) []sim.Command { return nil }
