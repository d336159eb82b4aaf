package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/raid-kernel/internal/config"
	"github.com/vovakirdan/raid-kernel/internal/sim"
)

// ErrMismatch reports a reproduction that differs from its recording.
var ErrMismatch = errors.New("replay: mismatch")

// Planner issues drone commands for a turn when the script has none.
type Planner func(obs sim.Observation) []sim.Command

// Options tune Record.
type Options struct {
	Start sim.StartOptions
	// Preset is written into the artifact so a replay can pick the same
	// rules. Record does not apply it; the engine already carries the rules.
	Preset config.DifficultyPreset
	// Planner fills turns the script leaves empty. Its commands are written
	// into the artifact so the run replays without it.
	Planner Planner
	// OnTurn is called after every step with the zero-based turn and the
	// hash of the resulting state.
	OnTurn func(turn int, res sim.StepResult, hash string)
	// StopOnTerminal ends the recording at the first turn that extracts or
	// fails the mission. Turns is trimmed to what was played.
	StopOnTerminal bool
}

// Record runs a mission from seed for the given number of turns and returns
// the full artifact. ctx is checked between turns.
func Record(ctx context.Context, e *sim.Engine, seed int64, turns int, script []sim.Batch, opts Options) (*Artifact, error) {
	if turns < 0 {
		return nil, fmt.Errorf("replay: negative turn count %d", turns)
	}
	state, err := e.NewState(seed, opts.Start)
	if err != nil {
		return nil, err
	}

	a := &Artifact{
		Seed:         seed,
		Turns:        turns,
		Preset:       opts.Preset,
		Commands:     make([]sim.Batch, 0, turns),
		Events:       make([]sim.Events, 0, turns),
		Observations: make([]sim.Observation, 0, turns),
		TurnHashes:   make([]string, 0, turns),
	}
	if !defaultStart(opts.Start) {
		start := opts.Start
		a.Start = &start
	}

	obs := sim.BuildObservation(state, sim.PhaseCommand)
	for i := 0; i < turns; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var cmds sim.Batch
		if i < len(script) {
			cmds = script[i]
		}
		if len(cmds) == 0 && opts.Planner != nil && !state.Terminal() {
			cmds = opts.Planner(obs)
		}
		if cmds == nil {
			cmds = sim.Batch{}
		}

		res, err := e.Step(state, cmds)
		if err != nil {
			return nil, fmt.Errorf("replay: turn %d: %w", i+1, err)
		}
		hash, err := HashState(res.NextState)
		if err != nil {
			return nil, err
		}

		a.Commands = append(a.Commands, cmds)
		a.Events = append(a.Events, res.Events)
		a.Observations = append(a.Observations, res.Observation)
		a.TurnHashes = append(a.TurnHashes, hash)
		if opts.OnTurn != nil {
			opts.OnTurn(i, res, hash)
		}

		state = res.NextState
		obs = res.Observation
		if opts.StopOnTerminal && state.Terminal() {
			a.Turns = len(a.Commands)
			break
		}
	}

	final, err := HashState(state)
	if err != nil {
		return nil, err
	}
	a.FinalHash = final
	return a, nil
}

func defaultStart(o sim.StartOptions) bool {
	l := o.Loadout
	return o.PowerBudget == 0 && o.BackpackCapacity == 0 &&
		l.Primary == "" && l.Secondary == "" && l.Modules == nil && l.Consumables == nil
}

// Report is the outcome of Verify.
type Report struct {
	Turns     int
	FinalHash string
	Expected  string
	// FirstDivergentTurn is the 1-based turn whose recorded events or state
	// hash first differ from the reproduction, or 0.
	FirstDivergentTurn int
	Final              *sim.GameState
}

// Match reports whether the reproduction agrees with the recording.
func (r Report) Match() bool {
	return r.FirstDivergentTurn == 0 && (r.Expected == "" || r.Expected == r.FinalHash)
}

// Verify replays an artifact from scratch. A mismatch is returned as an
// error wrapping ErrMismatch together with the filled report.
func Verify(ctx context.Context, e *sim.Engine, a *Artifact) (Report, error) {
	rep := Report{Turns: a.Turns, Expected: a.FinalHash}
	if a.Turns < 0 {
		return rep, fmt.Errorf("replay: negative turn count %d", a.Turns)
	}
	state, err := e.NewState(a.Seed, a.startOptions())
	if err != nil {
		return rep, err
	}

	for i := 0; i < a.Turns; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res, err := e.Step(state, a.batch(i))
		if err != nil {
			return rep, fmt.Errorf("replay: turn %d: %w", i+1, err)
		}
		if rep.FirstDivergentTurn == 0 {
			diverged, err := divergesAt(a, i, res)
			if err != nil {
				return rep, err
			}
			if diverged {
				rep.FirstDivergentTurn = i + 1
			}
		}
		state = res.NextState
	}

	rep.Final = state
	rep.FinalHash, err = HashState(state)
	if err != nil {
		return rep, err
	}

	switch {
	case rep.Expected != "" && rep.Expected != rep.FinalHash:
		return rep, fmt.Errorf("%w: final hash %s, recorded %s", ErrMismatch, rep.FinalHash, rep.Expected)
	case rep.FirstDivergentTurn != 0:
		return rep, fmt.Errorf("%w: turn %d differs from the recording", ErrMismatch, rep.FirstDivergentTurn)
	}
	return rep, nil
}

// divergesAt compares a reproduced turn with whatever evidence the artifact
// recorded for it.
func divergesAt(a *Artifact, turn int, res sim.StepResult) (bool, error) {
	if turn < len(a.Events) {
		want, err := Hash(a.Events[turn])
		if err != nil {
			return false, err
		}
		got, err := Hash(res.Events)
		if err != nil {
			return false, err
		}
		if want != got {
			return true, nil
		}
	}
	if turn < len(a.TurnHashes) {
		got, err := HashState(res.NextState)
		if err != nil {
			return false, err
		}
		if got != a.TurnHashes[turn] {
			return true, nil
		}
	}
	return false, nil
}
