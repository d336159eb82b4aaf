package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/raid-kernel/internal/replay"
	"github.com/vovakirdan/raid-kernel/internal/storage"
)

var validateCmd = &cobra.Command{
	Use:   "validate <artifact>",
	Short: "Re-run an artifact and compare hashes",
	Long: `Replay the commands of an artifact from its seed and compare the result
with what was recorded: the final state hash, and per turn the event log and
state hash. The preset defaults to the one stored in the artifact; --config
and --catalog must match the ones the artifact was recorded with.

Exits with status 1 when the reproduction differs.

Examples:
  raidsim validate raid-21.json
  raidsim validate runs/21.json.zst --catalog ./data`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) {
	path := args[0]

	art, err := replay.Read(path)
	if err != nil {
		fail("%v", err)
	}
	e, _, preset, err := loadEngine(art.Preset)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := replay.Verify(ctx, e, art)
	if err != nil && !errors.Is(err, replay.ErrMismatch) {
		fail("%v", err)
	}

	fmt.Printf("Artifact: %s\n", path)
	fmt.Printf("Seed:     %d\n", art.Seed)
	fmt.Printf("Preset:   %s\n", preset)
	fmt.Printf("Turns:    %d\n", rep.Turns)
	fmt.Printf("Replayed: %s\n", rep.FinalHash)
	if rep.Expected != "" {
		fmt.Printf("Recorded: %s\n", rep.Expected)
	}
	if rep.FirstDivergentTurn != 0 {
		fmt.Printf("First divergent turn: %d\n", rep.FirstDivergentTurn)
	}

	if known := knownRun(art.Seed, rep.FinalHash); known != "" {
		fmt.Printf("Matches stored run %s\n", known)
	}

	if !rep.Match() {
		fmt.Println("Result:   MISMATCH")
		os.Exit(1)
	}
	fmt.Println("Result:   OK")
}

// knownRun looks for a stored run with the same seed and final hash.
// History is optional here, so every failure just means "not found".
func knownRun(seed int64, hash string) string {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Debug("history unavailable", "err", err)
		return ""
	}
	defer store.Close()

	runs, err := store.RunsBySeed(seed)
	if err != nil {
		logger.Debug("history lookup failed", "err", err)
		return ""
	}
	for _, r := range runs {
		if r.FinalHash == hash {
			return r.ID
		}
	}
	return ""
}
