package sim

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/config"
)

// Engine binds the static catalog and the rules that every step consults.
// It holds no per-mission state and is safe to share between goroutines as
// long as each GameState chain stays on one of them.
type Engine struct {
	cat    *catalog.Catalog
	rules  config.Rules
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes debug output of the engine to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine validates rules against the catalog and returns an engine.
func NewEngine(cat *catalog.Catalog, rules config.Rules, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("sim: nil catalog")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	for _, r := range cat.Rooms() {
		if len(r.Tiles) < rules.Grid.RoomHeight || len(r.Tiles[0]) < rules.Grid.RoomWidth {
			return nil, fmt.Errorf("%w: room %q is smaller than the %dx%d room size",
				catalog.ErrInvalid, r.ID, rules.Grid.RoomWidth, rules.Grid.RoomHeight)
		}
	}

	e := &Engine{
		cat:    cat,
		rules:  rules,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.cat
}

// Rules returns a copy of the engine's rules.
func (e *Engine) Rules() config.Rules {
	return e.rules
}

// traits returns the unit's template traits. Enemies have none; a drone
// whose template is missing from the catalog is an error.
func (e *Engine) traits(u *Unit) (catalog.Traits, error) {
	if u.Faction != FactionDrone {
		return catalog.Traits{}, nil
	}
	t, err := e.cat.Drone(u.TypeID)
	if err != nil {
		return catalog.Traits{}, fmt.Errorf("sim: unit %s: %w", u.ID, err)
	}
	return t.Traits, nil
}
