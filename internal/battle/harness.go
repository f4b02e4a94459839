package battle

import "fmt"

// TestBattle is a headless battle harness used exclusively by tests. It
// wraps the Simulator with deterministic seeding, template-based unit
// placement, and direct access to the log and snapshot.
type TestBattle struct {
	Sim    *Simulator
	Engine *Engine // nil when built with WithoutEngine

	simCfg   SimConfig
	mechCfg  MechanicsConfig
	noEngine bool
	lib      *TemplateLibrary
	units    []BattleUnit
	nextID   UnitID
}

// battleOptionKind controls the pass in which an option is applied.
type battleOptionKind int

const (
	battleOptInfra battleOptionKind = iota // grid, seed, round cap, engine — applied first
	battleOptUnit                          // add units — applied once infra is settled
)

// BattleOption is a builder function applied to a TestBattle during
// construction.
type BattleOption struct {
	kind battleOptionKind
	fn   func(*TestBattle)
}

// WithGridSize sets the battlefield dimensions in cells.
func WithGridSize(w, h int) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.simCfg.GridWidth = w
		tb.simCfg.GridHeight = h
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.simCfg.Seed = seed
	}}
}

// WithRoundCap bounds the battle length.
func WithRoundCap(n int) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.simCfg.RoundCap = n
	}}
}

// WithConfig builds the engine from cfg instead of the full default.
func WithConfig(cfg MechanicsConfig) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.mechCfg = cfg
		tb.noEngine = false
	}}
}

// WithoutEngine runs the battle with no engine at all: pure base combat.
func WithoutEngine() BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.noEngine = true
	}}
}

// WithLibrary swaps the template library used by the unit options.
func WithLibrary(lib *TemplateLibrary) BattleOption {
	return BattleOption{battleOptInfra, func(tb *TestBattle) {
		tb.lib = lib
	}}
}

// WithRedUnit places a red unit from the named template, facing east.
func WithRedUnit(template string, x, y int) BattleOption {
	return BattleOption{battleOptUnit, func(tb *TestBattle) {
		tb.addUnit(template, TeamRed, Position{X: x, Y: y}, FacingEast)
	}}
}

// WithBlueUnit places a blue unit from the named template, facing west.
func WithBlueUnit(template string, x, y int) BattleOption {
	return BattleOption{battleOptUnit, func(tb *TestBattle) {
		tb.addUnit(template, TeamBlue, Position{X: x, Y: y}, FacingWest)
	}}
}

// WithUnit places a fully specified unit; an unset ID is assigned.
func WithUnit(u BattleUnit) BattleOption {
	return BattleOption{battleOptUnit, func(tb *TestBattle) {
		if u.ID == NoUnit {
			u.ID = tb.nextID
		}
		if u.ID >= tb.nextID {
			tb.nextID = u.ID + 1
		}
		tb.units = append(tb.units, u)
	}}
}

// WithCapabilities grants extra capabilities to the most recently placed
// unit. Order matters: put it directly after the unit option it decorates.
func WithCapabilities(caps ...Capability) BattleOption {
	return BattleOption{battleOptUnit, func(tb *TestBattle) {
		if len(tb.units) == 0 {
			panic("WithCapabilities needs a preceding unit option")
		}
		u := &tb.units[len(tb.units)-1]
		for _, c := range caps {
			u.Capabilities = u.Capabilities.With(c)
		}
	}}
}

// NewTestBattle constructs a battle from the given options in two ordered
// passes:
//  1. Infrastructure (grid, seed, round cap, engine configuration)
//  2. Units
func NewTestBattle(opts ...BattleOption) *TestBattle {
	tb := &TestBattle{
		simCfg:  SimConfig{GridWidth: 20, GridHeight: 20, Seed: 1, RoundCap: 50},
		mechCfg: DefaultConfig(),
		lib:     DefaultLibrary(),
		nextID:  1,
	}
	for _, o := range opts {
		if o.kind == battleOptInfra {
			o.fn(tb)
		}
	}
	for _, o := range opts {
		if o.kind == battleOptUnit {
			o.fn(tb)
		}
	}
	if !tb.noEngine {
		tb.Engine = NewEngine(tb.mechCfg)
	}
	tb.Sim = NewSimulator(tb.simCfg, tb.Engine, tb.units)
	return tb
}

// addUnit is the internal helper used by WithRedUnit / WithBlueUnit.
func (tb *TestBattle) addUnit(template string, team Team, pos Position, facing Facing) {
	t, ok := tb.lib.Get(template)
	if !ok {
		panic(fmt.Sprintf("unknown unit template %q", template))
	}
	tb.units = append(tb.units, t.Instantiate(tb.nextID, team, pos, facing))
	tb.nextID++
}

// State returns the current snapshot.
func (tb *TestBattle) State() *BattleState { return tb.Sim.State() }

// Log returns the battle log.
func (tb *TestBattle) Log() *BattleLog { return tb.Sim.Log() }

// Unit fetches a unit from the current snapshot.
func (tb *TestBattle) Unit(id UnitID) (BattleUnit, bool) { return tb.Sim.State().Unit(id) }

// MustUnit fetches a unit that the test placed; missing ids are test bugs.
func (tb *TestBattle) MustUnit(id UnitID) BattleUnit {
	u, ok := tb.Unit(id)
	if !ok {
		panic(fmt.Sprintf("no unit %d in battle", id))
	}
	return u
}

// RunRounds advances up to n rounds, stopping early on elimination.
func (tb *TestBattle) RunRounds(n int) int { return tb.Sim.RunRounds(n) }

// RunBattle plays the battle out and returns the report.
func (tb *TestBattle) RunBattle() BattleReport { return tb.Sim.RunBattle() }

// RunUntil advances round by round up to maxRounds, stopping early when
// predicate returns true. It returns the round at which the predicate was
// satisfied, or -1.
func (tb *TestBattle) RunUntil(predicate func(*TestBattle) bool, maxRounds int) int {
	for i := 0; i < maxRounds; i++ {
		if tb.Sim.RunRounds(1) == 0 {
			return -1
		}
		if predicate(tb) {
			return tb.Sim.Round()
		}
	}
	return -1
}
