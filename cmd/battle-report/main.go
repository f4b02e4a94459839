package main

import (
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/Garsondee/Shield-Wall/internal/battle"
)

type runStats struct {
	runIndex int
	seed     int64

	outcome     battle.BattleOutcome
	description string
	rounds      int
	redLost     int
	blueLost    int

	chargeEvents    int
	interceptEvents int
	overwatchShots  int
	reloads         int
	blockedAttacks  int
	events          int
}

// deployments is the mirrored skirmish line: red as given, blue reflected
// on the far edge.
var deployments = []struct {
	template string
	x, y     int
}{
	{"spearman", 2, 8},
	{"spearman", 2, 10},
	{"knight", 2, 9},
	{"archer", 1, 8},
	{"crossbowman", 1, 10},
	{"mage", 0, 9},
}

const gridSize = 20

func main() {
	var runs int
	var seedBase int64
	var seedStep int64
	var rounds int
	var preset string
	var configPath string
	var templatesPath string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of battles to run")
	flag.Int64Var(&seedBase, "seed", 42, "RNG seed for battle 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between battles")
	flag.IntVar(&rounds, "rounds", 50, "round cap per battle")
	flag.StringVar(&preset, "preset", "full", "mechanics preset: full or mvp (ignored with -config)")
	flag.StringVar(&configPath, "config", "", "mechanics configuration YAML file")
	flag.StringVar(&templatesPath, "templates", "", "unit template library YAML file")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if rounds <= 0 {
		fmt.Println("error: -rounds must be > 0")
		return
	}

	cfg, err := loadMechanics(preset, configPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	lib, err := loadTemplates(templatesPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	logger, err := battle.NewBattleLogger(verbose)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	defer logger.Sync() //nolint:errcheck

	fmt.Printf("=== Battle Mechanics Report ===\n")
	fmt.Printf("preset=%s runs=%d rounds=%d seed=%d seed_step=%d\n\n",
		presetLabel(preset, configPath), runs, rounds, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, err := runSkirmish(i+1, seed, rounds, cfg, lib, logger)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all)
}

func loadMechanics(preset, configPath string) (battle.MechanicsConfig, error) {
	if configPath != "" {
		return battle.LoadConfig(configPath)
	}
	switch preset {
	case "full":
		return battle.DefaultConfig(), nil
	case "mvp":
		return battle.MVPPreset(), nil
	default:
		return battle.MechanicsConfig{}, fmt.Errorf("unsupported preset %q (supported: full, mvp)", preset)
	}
}

func loadTemplates(path string) (*battle.TemplateLibrary, error) {
	if path == "" {
		return battle.DefaultLibrary(), nil
	}
	return battle.LoadTemplateLibrary(path)
}

func presetLabel(preset, configPath string) string {
	if configPath != "" {
		return "custom"
	}
	return preset
}

// buildRoster instantiates the mirrored deployment from the library:
// red on the west edge facing east, blue reflected on the east edge.
func buildRoster(lib *battle.TemplateLibrary) ([]battle.BattleUnit, error) {
	var units []battle.BattleUnit
	id := battle.UnitID(1)
	for _, d := range deployments {
		t, ok := lib.Get(d.template)
		if !ok {
			return nil, fmt.Errorf("template library has no %q", d.template)
		}
		units = append(units, t.Instantiate(id, battle.TeamRed,
			battle.Position{X: d.x, Y: d.y}, battle.FacingEast))
		id++
	}
	for _, d := range deployments {
		t, ok := lib.Get(d.template)
		if !ok {
			return nil, fmt.Errorf("template library has no %q", d.template)
		}
		units = append(units, t.Instantiate(id, battle.TeamBlue,
			battle.Position{X: gridSize - 1 - d.x, Y: d.y}, battle.FacingWest))
		id++
	}
	return units, nil
}

func runSkirmish(runIndex int, seed int64, rounds int, cfg battle.MechanicsConfig,
	lib *battle.TemplateLibrary, logger *zap.Logger) (runStats, error) {
	units, err := buildRoster(lib)
	if err != nil {
		return runStats{}, err
	}
	sim := battle.NewSimulator(battle.SimConfig{
		GridWidth:  gridSize,
		GridHeight: gridSize,
		Seed:       seed,
		RoundCap:   rounds,
		Logger:     logger,
	}, battle.NewEngine(cfg), units)
	rep := sim.RunBattle()

	return runStats{
		runIndex:        runIndex,
		seed:            seed,
		outcome:         rep.Outcome.Outcome,
		description:     rep.Outcome.Description,
		rounds:          rep.Rounds,
		redLost:         rep.Outcome.RedCasualties,
		blueLost:        rep.Outcome.BlueCasualties,
		chargeEvents:    rep.Log.CountCategory("charge"),
		interceptEvents: rep.Log.CountCategory("intercept"),
		overwatchShots:  len(rep.Log.Filter("overwatch", "shot")),
		reloads:         len(rep.Log.Filter("ammo", "reload")),
		blockedAttacks:  len(rep.Log.Filter("attack", "blocked")),
		events:          rep.Log.Len(),
	}, nil
}

func printRun(rs runStats) {
	fmt.Printf("--- Battle %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s rounds=%d (%s)\n", rs.outcome, rs.rounds, rs.description)
	fmt.Printf("casualties: red=%d blue=%d\n", rs.redLost, rs.blueLost)
	fmt.Printf("mechanics: charge_events=%d intercept_events=%d overwatch_shots=%d reloads=%d blocked_attacks=%d total_events=%d\n",
		rs.chargeEvents, rs.interceptEvents, rs.overwatchShots, rs.reloads, rs.blockedAttacks, rs.events)
	fmt.Println()
}

func printAggregate(all []runStats) {
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d\n", len(all))

	dist := outcomeDistribution(all)
	for _, o := range []battle.BattleOutcome{
		battle.OutcomeRedVictory, battle.OutcomeBlueVictory, battle.OutcomeDraw, battle.OutcomeInconclusive,
	} {
		if dist[o] > 0 {
			fmt.Printf("  %-14s %d\n", o, dist[o])
		}
	}

	totalRounds, totalRed, totalBlue := 0, 0, 0
	totalCharges, totalIntercepts, totalShots, totalReloads, totalBlocked := 0, 0, 0, 0, 0
	for _, rs := range all {
		totalRounds += rs.rounds
		totalRed += rs.redLost
		totalBlue += rs.blueLost
		totalCharges += rs.chargeEvents
		totalIntercepts += rs.interceptEvents
		totalShots += rs.overwatchShots
		totalReloads += rs.reloads
		totalBlocked += rs.blockedAttacks
	}
	fmt.Printf("avg_rounds=%.1f avg_casualties: red=%.1f blue=%.1f\n",
		avg(totalRounds, len(all)), avg(totalRed, len(all)), avg(totalBlue, len(all)))
	fmt.Printf("avg_mechanics_per_battle: charge=%.1f intercept=%.1f overwatch=%.1f reload=%.1f blocked=%.1f\n",
		avg(totalCharges, len(all)), avg(totalIntercepts, len(all)),
		avg(totalShots, len(all)), avg(totalReloads, len(all)), avg(totalBlocked, len(all)))
}

func outcomeDistribution(all []runStats) map[battle.BattleOutcome]int {
	dist := make(map[battle.BattleOutcome]int)
	for _, rs := range all {
		dist[rs.outcome]++
	}
	return dist
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
