// Package registry provides a global registry for autopilot policies.
// Policies register themselves in init() functions, allowing the CLI
// to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/sim"
)

// Policy turns an observation into drone commands for the next turn.
// A policy may keep memory between calls, so each run gets its own instance.
type Policy interface {
	// ID returns a unique identifier for this policy (e.g., "hold", "advance").
	// Used for CLI flags and run history.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Plan returns the commands to submit for the turn described by obs.
	Plan(obs sim.Observation) []sim.Command
}

// PolicyInfo contains metadata about a registered policy.
type PolicyInfo struct {
	ID    string
	Title string
}

// Factory creates a new policy instance. The catalog may be nil when the
// registry only needs the policy's metadata.
type Factory func(cat *catalog.Catalog) Policy

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a policy factory to the registry.
// Typically called from a policy's init() function.
// Panics if a policy with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: policy %q already registered", id))
	}

	factories[id] = f
	titles[id] = f(nil).Title()
}

// List returns information about all registered policies, sorted by ID.
func List() []PolicyInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]PolicyInfo, 0, len(factories))
	for id := range factories {
		result = append(result, PolicyInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new policy by its ID.
// Returns an error if the policy ID is not registered.
func Create(id string, cat *catalog.Catalog) (Policy, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown policy %q", id)
	}

	return f(cat), nil
}

// Exists checks if a policy with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
