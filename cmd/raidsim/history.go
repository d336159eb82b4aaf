package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/raid-kernel/internal/storage"
)

var (
	flagLimit  int
	flagClear  bool
	flagRunID  string
	flagBySeed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored runs",
	Long: `Display recent runs from the history database, newest first, followed by
overall statistics.

Examples:
  raidsim history
  raidsim history --limit 5
  raidsim history --seed 21 --by-seed
  raidsim history --run 01HZX3Q4Y7N2ZK8W5M6R9T0ABC
  raidsim history --clear`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all stored runs")
	historyCmd.Flags().StringVar(&flagRunID, "run", "", "Show one run with its per-turn hashes")
	historyCmd.Flags().BoolVar(&flagBySeed, "by-seed", false, "Only show runs of --seed")
}

func runHistory(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening run database: %v", err)
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearRuns(); err != nil {
			fail("%v", err)
		}
		fmt.Println("Run history cleared.")
	case flagRunID != "":
		showRun(store, flagRunID)
	default:
		listRuns(store)
	}
}

func showRun(store *storage.Store, id string) {
	run, err := store.Run(id)
	if err != nil {
		fail("%v", err)
	}
	if run == nil {
		fail("no run %q", id)
	}
	hashes, err := store.TurnHashes(id)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Date:     %s\n", run.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("Seed:     %d\n", run.Seed)
	fmt.Printf("Preset:   %s\n", run.Preset)
	fmt.Printf("Turns:    %d\n", run.Turns)
	fmt.Printf("Mission:  %s\n", missionLabel(*run))
	fmt.Printf("Power:    %d\n", run.Power)
	fmt.Printf("Hash:     %s\n", run.FinalHash)
	fmt.Printf("Catalog:  %s\n", shortDigest(run.CatalogDigest))
	if run.ArtifactPath != "" {
		fmt.Printf("Artifact: %s\n", run.ArtifactPath)
	}

	fmt.Println()
	fmt.Printf("  %-4s  %s\n", "Turn", "State hash")
	fmt.Printf("  %-4s  %s\n", "----", "----------")
	for i, h := range hashes {
		fmt.Printf("  %-4d  %s\n", i+1, h)
	}
}

func listRuns(store *storage.Store) {
	var (
		runs []storage.RunRecord
		err  error
	)
	if flagBySeed {
		runs, err = store.RunsBySeed(flagSeed)
	} else {
		runs, err = store.RecentRuns(flagLimit)
	}
	if err != nil {
		fail("retrieving runs: %v", err)
	}

	fmt.Println("Run History")
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'raidsim run --policy advance' to record the first one!")
		return
	}

	// Print header
	fmt.Printf("  %-26s  %-10s  %-6s  %-5s  %-22s  %s\n", "Run", "Seed", "Preset", "Turns", "Mission", "Date")
	fmt.Printf("  %-26s  %-10s  %-6s  %-5s  %-22s  %s\n", "---", "----", "------", "-----", "-------", "----")

	for _, r := range runs {
		fmt.Printf("  %-26s  %-10d  %-6s  %-5d  %-22s  %s\n",
			r.ID, r.Seed, r.Preset, r.Turns, missionLabel(r), r.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.Stats()
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("Runs: %d  Extracted: %d  Failed: %d  Avg turns: %.1f\n",
		stats.Runs, stats.Extracted, stats.Failed, stats.AvgTurns)
}

func missionLabel(r storage.RunRecord) string {
	if r.FailureReason != "" {
		return fmt.Sprintf("%s (%s)", r.Mission, r.FailureReason)
	}
	return r.Mission
}
