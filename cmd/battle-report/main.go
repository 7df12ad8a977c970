// Command battle-report runs headless battles and aggregates their
// outcomes. Each run builds a standard meeting engagement from a seed,
// steps it to completion, and reports the result; runs can be archived
// to SQLite and listed later.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Garsondee/Line-of-Battle/internal/battle"
	"github.com/Garsondee/Line-of-Battle/internal/reportstore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "battle-report",
		Short:         "Headless hex-battle runner and report tool",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd(), newHistoryCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run seeded battles and print an aggregate report",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindConfig(cmd)
			if err != nil {
				return err
			}
			return runBattles(v)
		},
	}
	cmd.Flags().Int("runs", 10, "number of battles to run")
	cmd.Flags().Int64("seed", 1, "seed of the first run; later runs increment it")
	cmd.Flags().Int("width", battle.DefaultFieldWidth, "battlefield width in hexes")
	cmd.Flags().Int("height", battle.DefaultFieldHeight, "battlefield height in hexes")
	cmd.Flags().Int("max-ticks", battle.MaxBattleTicks, "tick ceiling per battle")
	cmd.Flags().String("focus", "", "unit name to report at individual detail")
	cmd.Flags().String("db", "", "SQLite file to archive each run into (empty: no archive)")
	cmd.Flags().Bool("verbose", false, "log per-run detail")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List battles archived in the report database",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := bindConfig(cmd)
			if err != nil {
				return err
			}
			return showHistory(v)
		},
	}
	cmd.Flags().String("db", "battle-report.db", "SQLite report database")
	return cmd
}

// bindConfig layers flags, LOB_* environment variables and an optional
// battle-report.yaml config file, flags winning.
func bindConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("LOB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetConfigName("battle-report")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
}

// runStats aggregates outcomes across seeded runs.
type runStats struct {
	runs           int
	redWins        int
	blueWins       int
	draws          int
	totalTicks     int
	redCasualties  int
	blueCasualties int
	descriptions   map[string]int
}

func runBattles(v *viper.Viper) error {
	logger := newLogger(v.GetBool("verbose"))

	var store *reportstore.Store
	if path := v.GetString("db"); path != "" {
		var err error
		store, err = reportstore.Open(path)
		if err != nil {
			return fmt.Errorf("open report store: %w", err)
		}
		defer store.Close()
	}

	runs := v.GetInt("runs")
	firstSeed := v.GetInt64("seed")
	stats := runStats{descriptions: make(map[string]int)}

	for i := 0; i < runs; i++ {
		seed := firstSeed + int64(i)
		tb := buildScenario(seed, v)
		res := tb.RunUntilFinished()
		stats.record(res)

		logger.Info().
			Int64("seed", seed).
			Str("outcome", res.Outcome.String()).
			Str("reason", res.Description).
			Int("ticks", res.EndTick).
			Int("red_casualties", res.RedCasualties).
			Int("blue_casualties", res.BlueCasualties).
			Msg("battle finished")

		if store != nil {
			if _, err := store.SaveReport(context.Background(), seed, res, tb.Log().Entries()); err != nil {
				logger.Error().Err(err).Int64("seed", seed).Msg("archive failed")
			}
		}
	}

	printStats(stats)
	return nil
}

// buildScenario constructs the standard meeting engagement for a seed.
// The scenario is fixed so outcome variation comes only from the seed.
func buildScenario(seed int64, v *viper.Viper) *battle.TestBattle {
	w := v.GetInt("width")
	h := v.GetInt("height")
	mid := h / 2
	center := battle.Hex{Q: w / 2, R: mid}

	tb := battle.NewTestBattle(
		battle.WithFieldSize(w, h),
		battle.WithSeed(seed),
		battle.WithMaxTicks(v.GetInt("max-ticks")),
		battle.WithObjective(center),
		battle.WithTerrain(battle.Hex{Q: w / 2, R: mid - 3}, battle.TerrainForest),
		battle.WithTerrain(battle.Hex{Q: w / 2, R: mid + 3}, battle.TerrainHills),

		battle.WithRedUnit("1st Foot", battle.HeavyInfantry, battle.Hex{Q: 4, R: mid - 2}, 100),
		battle.WithRedUnit("2nd Foot", battle.LightInfantry, battle.Hex{Q: 4, R: mid + 2}, 100),
		battle.WithRedUnit("Red Bows", battle.Archers, battle.Hex{Q: 2, R: mid}, 60),
		battle.WithRedUnit("Red Horse", battle.HeavyCavalry, battle.Hex{Q: 4, R: mid - 5}, 40),
		battle.WithBlueUnit("Blue Spears", battle.Spearmen, battle.Hex{Q: w - 5, R: mid - 2}, 100),
		battle.WithBlueUnit("Blue Foot", battle.LightInfantry, battle.Hex{Q: w - 5, R: mid + 2}, 100),
		battle.WithBlueUnit("Blue Bows", battle.Archers, battle.Hex{Q: w - 3, R: mid}, 60),
		battle.WithBlueUnit("Blue Horse", battle.LightCavalry, battle.Hex{Q: w - 5, R: mid + 5}, 40),
		battle.WithCourierPool(battle.SideRed, 6),
		battle.WithCourierPool(battle.SideBlue, 6),

		battle.WithWaypoints("1st Foot", battle.NewWaypoint(center, battle.BehaviorAttackFrom)),
		battle.WithWaypoints("2nd Foot", battle.NewWaypoint(center, battle.BehaviorAttackFrom)),
		battle.WithWaypoints("Red Horse", battle.NewWaypoint(battle.Hex{Q: w / 2, R: mid - 5}, battle.BehaviorMoveTo).WithPace(battle.PaceCharge)),
		battle.WithWaypoints("Blue Spears", battle.NewWaypoint(center, battle.BehaviorHoldAt)),
		battle.WithWaypoints("Blue Foot", battle.NewWaypoint(center, battle.BehaviorAttackFrom)),
		battle.WithWaypoints("Blue Horse", battle.NewWaypoint(battle.Hex{Q: w / 2, R: mid + 5}, battle.BehaviorMoveTo).WithPace(battle.PaceRun)),
		battle.WithEngagementRule("1st Foot", battle.EngageAggressive),
		battle.WithEngagementRule("2nd Foot", battle.EngageAggressive),
		battle.WithEngagementRule("Red Horse", battle.EngageAggressive),
		battle.WithEngagementRule("Blue Foot", battle.EngageAggressive),
		battle.WithEngagementRule("Blue Horse", battle.EngageAggressive),
	)
	if name := v.GetString("focus"); name != "" {
		if u := tb.Unit(name); u != nil {
			tb.State.SetFocus(u.ID)
		}
	}
	return tb
}

func (s *runStats) record(res battle.Result) {
	s.runs++
	s.totalTicks += res.EndTick
	s.redCasualties += res.RedCasualties
	s.blueCasualties += res.BlueCasualties
	s.descriptions[res.Description]++
	switch res.Outcome {
	case battle.OutcomeRedVictory:
		s.redWins++
	case battle.OutcomeBlueVictory:
		s.blueWins++
	default:
		s.draws++
	}
}

func printStats(s runStats) {
	fmt.Printf("\n=== %d runs ===\n", s.runs)
	fmt.Printf("red wins:  %d\n", s.redWins)
	fmt.Printf("blue wins: %d\n", s.blueWins)
	fmt.Printf("draws:     %d\n", s.draws)
	if s.runs > 0 {
		fmt.Printf("mean ticks: %d\n", s.totalTicks/s.runs)
		fmt.Printf("mean casualties: red %d, blue %d\n",
			s.redCasualties/s.runs, s.blueCasualties/s.runs)
	}
	fmt.Println("outcomes:")
	for desc, n := range s.descriptions {
		fmt.Printf("  %3d  %s\n", n, desc)
	}
}

func showHistory(v *viper.Viper) error {
	store, err := reportstore.Open(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open report store: %w", err)
	}
	defer store.Close()

	reports, err := store.ListReports(context.Background())
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("no battles archived")
		return nil
	}
	for _, r := range reports {
		fmt.Printf("#%-4d seed=%-6d %-14s tick=%-5d red %d(-%d) vs blue %d(-%d)  %s\n",
			r.ID, r.Seed, r.Result.Outcome, r.Result.EndTick,
			r.Result.RedStrength, r.Result.RedCasualties,
			r.Result.BlueStrength, r.Result.BlueCasualties,
			r.Result.Description)
	}
	return nil
}
