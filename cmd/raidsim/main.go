// raidsim drives the deterministic raid kernel from the command line.
//
// Usage:
//
//	raidsim run                  - Play a mission and write a replay artifact
//	raidsim validate <artifact>  - Re-run an artifact and compare hashes
//	raidsim inspect <artifact>   - Print the map of a recorded turn
//	raidsim history              - Show stored runs
//	raidsim catalog              - Show the loaded game data
//	raidsim list                 - List autopilot policies
//
// Global flags:
//
//	--seed <value>     - Mission seed (0 = random based on time)
//	--db <path>        - Run history database (default: ~/.raidsim/runs.db)
//	--config <path>    - Rules YAML
//	--catalog <dir>    - Catalog directory with items/units/rooms YAML
//	--preset <name>    - Difficulty preset: easy, normal, hard, fixed (replays default to the recorded one)
//	--log-level <lvl>  - debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import policies to register them
	_ "github.com/vovakirdan/raid-kernel/internal/autopilot"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/config"
	"github.com/vovakirdan/raid-kernel/internal/sim"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagCatalog  string
	flagPreset   string
	flagLogLevel string

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "raidsim",
	})
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "raidsim",
	Short: "Raid kernel - deterministic tactical extraction simulator",
	Long: `raidsim runs the deterministic raid kernel: a squad of four drones fights
through a chain of rooms toward an extraction point while a shared power
reserve drains. Every run is reproducible from its seed and command stream.

Available commands:
  run       - Play a mission and write a replay artifact
  validate  - Re-run an artifact and compare hashes
  inspect   - Print the map of a recorded turn
  history   - Show stored runs
  catalog   - Show the loaded game data
  list      - List autopilot policies

Examples:
  raidsim run --seed 21 --turns 30 --policy advance --out runs/21.json.zst
  raidsim validate runs/21.json.zst
  raidsim inspect runs/21.json.zst --turn 5
  raidsim history --limit 5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Mission seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.raidsim/runs.db", "Path to run history database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom rules YAML")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Directory with items.yaml, units.yaml and rooms.yaml (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(listCmd)
}

// fail prints an error in the house format and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadCatalog returns the catalog from --catalog or the built-in data.
func loadCatalog() (*catalog.Catalog, error) {
	if flagCatalog == "" {
		return catalog.Default()
	}
	return catalog.Load(flagCatalog)
}

// loadEngine builds an engine from the global flags. recorded is the preset
// of an artifact being replayed and applies unless --preset is given.
func loadEngine(recorded config.DifficultyPreset) (*sim.Engine, *catalog.Catalog, config.DifficultyPreset, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, nil, "", fmt.Errorf("loading catalog: %w", err)
	}

	rules, err := config.LoadRules(flagConfig)
	if err != nil {
		return nil, nil, "", fmt.Errorf("loading rules: %w", err)
	}
	preset, err := config.ResolvePreset(flagPreset, recorded)
	if err != nil {
		return nil, nil, "", err
	}
	if recorded != "" && flagPreset != "" && preset != recorded {
		logger.Warn("preset differs from the recording", "preset", preset, "recorded", recorded)
	}
	config.ApplyPreset(&rules, preset)

	e, err := sim.NewEngine(cat, rules, sim.WithLogger(logger))
	if err != nil {
		return nil, nil, "", err
	}
	logger.Debug("engine ready", "preset", preset, "catalog", shortDigest(cat.Digest), "power", rules.Power.Start)
	return e, cat, preset, nil
}

// resolveSeed returns --seed, or a time-based seed when it is zero.
func resolveSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	seed := int64(uint32(time.Now().UnixNano()))
	logger.Info("using random seed", "seed", seed)
	return seed
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
