package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/raid-kernel/internal/render"
	"github.com/vovakirdan/raid-kernel/internal/replay"
	"github.com/vovakirdan/raid-kernel/internal/sim"
)

var (
	flagTurn   int
	flagColor  string
	flagEvents bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact>",
	Short: "Print the map of a recorded turn",
	Long: `Draw the observation after a turn of an artifact as an ASCII map, followed
by a unit summary. Turn 0 is the mission start; the default is the last turn.
Artifacts recorded without observations are replayed up to the turn.

Legend:
  #  wall        .  floor       h/H  half/full cover   ~  smoke
  +  door        =  locked      /    open door
  C  console     c  used        L/l  crate / emptied   E  extraction
  1-4 drones     a-z enemies by type                   x  downed unit

Examples:
  raidsim inspect raid-21.json
  raidsim inspect raid-21.json --turn 3 --events
  raidsim inspect raid-21.json --color never > turn.txt`,
	Args: cobra.ExactArgs(1),
	Run:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&flagTurn, "turn", -1, "Turn to show (0 = start, -1 = last)")
	inspectCmd.Flags().StringVar(&flagColor, "color", "auto", "Colour output: auto, always, never")
	inspectCmd.Flags().BoolVar(&flagEvents, "events", false, "Also print the events of the turn")
}

func runInspect(cmd *cobra.Command, args []string) {
	art, err := replay.Read(args[0])
	if err != nil {
		fail("%v", err)
	}

	turn := flagTurn
	if turn < 0 {
		turn = art.Turns
	}
	if turn > art.Turns {
		fail("turn %d out of range (artifact has %d turns)", turn, art.Turns)
	}

	obs, err := observationAt(art, turn)
	if err != nil {
		fail("%v", err)
	}

	color := false
	fd := int(os.Stdout.Fd())
	switch flagColor {
	case "always":
		color = true
	case "never":
	case "auto":
		color = term.IsTerminal(fd)
	default:
		fail("invalid --color %q (want auto, always or never)", flagColor)
	}
	if w, _, err := term.GetSize(fd); err == nil && w < obs.Grid.Width {
		logger.Warn("terminal narrower than the map", "width", w, "map", obs.Grid.Width)
	}

	scr := render.Draw(obs)
	if color {
		fmt.Println(render.Styled(scr))
	} else {
		fmt.Println(scr.String())
	}
	fmt.Println()
	fmt.Print(render.Summary(obs))

	if flagEvents && turn > 0 && turn <= len(art.Events) {
		fmt.Println()
		for _, ev := range art.Events[turn-1] {
			raw, err := sim.EncodeEvent(ev)
			if err != nil {
				fail("%v", err)
			}
			fmt.Println(string(raw))
		}
	}
}

// observationAt returns the recorded observation after turn, replaying the
// commands when the artifact does not carry it.
func observationAt(art *replay.Artifact, turn int) (sim.Observation, error) {
	if turn > 0 && turn <= len(art.Observations) {
		return art.Observations[turn-1], nil
	}

	e, _, _, err := loadEngine(art.Preset)
	if err != nil {
		return sim.Observation{}, err
	}
	var start sim.StartOptions
	if art.Start != nil {
		start = *art.Start
	}
	state, err := e.NewState(art.Seed, start)
	if err != nil {
		return sim.Observation{}, err
	}
	if turn == 0 {
		return sim.BuildObservation(state, sim.PhaseCommand), nil
	}

	var res sim.StepResult
	for i := 0; i < turn; i++ {
		var cmds sim.Batch
		if i < len(art.Commands) {
			cmds = art.Commands[i]
		}
		if res, err = e.Step(state, cmds); err != nil {
			return sim.Observation{}, fmt.Errorf("turn %d: %w", i+1, err)
		}
		state = res.NextState
	}
	return res.Observation, nil
}
