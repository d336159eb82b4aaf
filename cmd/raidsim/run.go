package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/config"
	"github.com/vovakirdan/raid-kernel/internal/registry"
	"github.com/vovakirdan/raid-kernel/internal/replay"
	"github.com/vovakirdan/raid-kernel/internal/sim"
	"github.com/vovakirdan/raid-kernel/internal/storage"
)

var (
	flagTurns     int
	flagCommands  string
	flagOut       string
	flagPolicy    string
	flagPower     int
	flagBackpack  int
	flagPrimary   string
	flagSecondary string
	flagNoSave    bool
	flagKeepGoing bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play a mission and write a replay artifact",
	Long: `Run a mission from a seed. Commands come from a script file, from an
autopilot policy, or both: scripted turns win and the policy fills the
turns the script leaves empty. Without either the squad holds position.

The run stops at extraction or mission failure unless --keep-going is set.
The artifact records commands, events, observations and per-turn hashes;
a name ending in .zst is zstd-compressed.

Examples:
  raidsim run --seed 21 --turns 30 --policy advance
  raidsim run --commands script.json --out runs/script.json.zst
  raidsim run --seed 7 --preset hard --power 60 --primary coil-cannon`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagTurns, "turns", 50, "Number of turns to play")
	runCmd.Flags().StringVar(&flagCommands, "commands", "", "Command script: {seed, turns, commands} or a bare array of turns")
	runCmd.Flags().StringVar(&flagOut, "out", "", "Artifact path (default: raid-<seed>.json)")
	runCmd.Flags().StringVar(&flagPolicy, "policy", "", "Autopilot policy for unscripted turns (see 'raidsim list')")
	runCmd.Flags().IntVar(&flagPower, "power", 0, "Starting power budget (0 = rules default)")
	runCmd.Flags().IntVar(&flagBackpack, "backpack", 0, "Backpack capacity per drone (0 = rules default)")
	runCmd.Flags().StringVar(&flagPrimary, "primary", "", "Primary weapon override for every drone")
	runCmd.Flags().StringVar(&flagSecondary, "secondary", "", "Secondary weapon override for every drone")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not store the run in the history database")
	runCmd.Flags().BoolVar(&flagKeepGoing, "keep-going", false, "Play all turns even after the mission ends")
}

func runRun(cmd *cobra.Command, args []string) {
	e, cat, preset, err := loadEngine("")
	if err != nil {
		fail("%v", err)
	}

	seed := flagSeed
	turns := flagTurns
	var script []sim.Batch
	if flagCommands != "" {
		cl, err := replay.LoadCommands(flagCommands)
		if err != nil {
			fail("%v", err)
		}
		script = cl.Commands
		if cl.Seed != nil && !cmd.Flags().Changed("seed") {
			seed = *cl.Seed
		}
		switch {
		case cl.Turns != nil && !cmd.Flags().Changed("turns"):
			turns = *cl.Turns
		case !cmd.Flags().Changed("turns"):
			turns = len(script)
		}
	}
	if seed == 0 {
		seed = resolveSeed()
	}

	opts := replay.Options{
		Start: sim.StartOptions{
			PowerBudget:      flagPower,
			BackpackCapacity: flagBackpack,
			Loadout:          catalog.Loadout{Primary: flagPrimary, Secondary: flagSecondary},
		},
		Preset:         preset,
		StopOnTerminal: !flagKeepGoing,
	}
	if config.IsFixedPreset(preset) {
		logger.Info("power upkeep disabled", "preset", preset)
	}

	if flagPolicy != "" {
		if !registry.Exists(flagPolicy) {
			fail("unknown policy %q\nRun 'raidsim list' to see available policies.", flagPolicy)
		}
		p, err := registry.Create(flagPolicy, cat)
		if err != nil {
			fail("%v", err)
		}
		opts.Planner = p.Plan
	}

	var last *sim.GameState
	opts.OnTurn = func(turn int, res sim.StepResult, hash string) {
		last = res.NextState
		logger.Debug("turn", "n", turn+1, "events", len(res.Events), "power", res.NextState.Power, "hash", shortDigest(hash))
		for _, ev := range res.Events.OfType(sim.EvExtractionSuccess) {
			logger.Info("extracted", "turn", turn+1, "unit", ev.(sim.ExtractionSuccessEvent).UnitID)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("starting mission", "seed", seed, "turns", turns, "preset", preset, "policy", flagPolicy)
	art, err := replay.Record(ctx, e, seed, turns, script, opts)
	if err != nil {
		fail("%v", err)
	}
	if last == nil {
		if last, err = e.NewState(seed, opts.Start); err != nil {
			fail("%v", err)
		}
	}

	out := flagOut
	if out == "" {
		out = fmt.Sprintf("raid-%d.json", seed)
	}
	if err := replay.Write(out, art); err != nil {
		fail("writing artifact: %v", err)
	}

	fmt.Printf("Seed:     %d\n", seed)
	fmt.Printf("Turns:    %d\n", art.Turns)
	fmt.Printf("Mission:  %s", last.Mission.Status)
	if last.Mission.FailureReason != "" {
		fmt.Printf(" (%s)", last.Mission.FailureReason)
	}
	fmt.Println()
	fmt.Printf("Power:    %d\n", last.Power)
	fmt.Printf("Hash:     %s\n", art.FinalHash)
	fmt.Printf("Artifact: %s\n", out)

	if flagNoSave {
		return
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("run not saved", "err", err)
		return
	}
	defer store.Close()

	id, err := store.SaveRun(storage.RunRecord{
		Seed:          seed,
		Turns:         art.Turns,
		Preset:        string(preset),
		Mission:       string(last.Mission.Status),
		FailureReason: last.Mission.FailureReason,
		Power:         last.Power,
		FinalHash:     art.FinalHash,
		CatalogDigest: cat.Digest,
		ArtifactPath:  out,
	}, art.TurnHashes)
	if err != nil {
		logger.Warn("run not saved", "err", err)
		return
	}
	fmt.Printf("Run:      %s\n", id)
}
