package battle

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AbilityArcaneBolt is the mage's ranged attack. It runs on a cooldown
// instead of ammunition.
const AbilityArcaneBolt = "arcane_bolt"

// --- Simulator ---

// SimConfig parameterizes one battle run.
type SimConfig struct {
	GridWidth  int
	GridHeight int
	Seed       int64
	RoundCap   int
	Logger     *zap.Logger
}

// Simulator drives a full battle over the snapshot substrate. It owns the
// base combat rules — initiative order, walking, strikes, dodge rolls —
// and defers every mechanic to the engine. With a nil engine, or one
// built from MVPPreset, the battle is pure base combat: both produce the
// same log byte for byte.
type Simulator struct {
	cfg    SimConfig
	engine *Engine
	state  *BattleState
	log    *BattleLog
	logger *zap.Logger
	rng    *rand.Rand
	round  int
}

// NewSimulator builds a battle from pre-instantiated units. A nil engine
// disables every mechanic.
func NewSimulator(cfg SimConfig, engine *Engine, units []BattleUnit) *Simulator {
	if cfg.GridWidth <= 0 {
		cfg.GridWidth = 20
	}
	if cfg.GridHeight <= 0 {
		cfg.GridHeight = 20
	}
	if cfg.RoundCap <= 0 {
		cfg.RoundCap = 50
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	st := NewBattleState(units)
	if engine != nil {
		st = engine.InitializeState(st)
	}
	return &Simulator{
		cfg:    cfg,
		engine: engine,
		state:  st,
		log:    NewBattleLog(),
		logger: logger,
		rng:    rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- battles must replay from a seed
	}
}

// State returns the current snapshot.
func (s *Simulator) State() *BattleState { return s.state }

// Log returns the battle log.
func (s *Simulator) Log() *BattleLog { return s.log }

// Round returns the last round started, 0 before the first.
func (s *Simulator) Round() int { return s.round }

// BattleReport is the record of one finished battle.
type BattleReport struct {
	ID      string
	Seed    int64
	Rounds  int
	Outcome OutcomeReport
	Log     *BattleLog
	Final   *BattleState
}

// RunBattle plays rounds until one side is eliminated or the round cap is
// reached, then classifies the outcome.
func (s *Simulator) RunBattle() BattleReport {
	for s.round < s.cfg.RoundCap && !s.over() {
		s.round++
		s.logger.Debug("round start",
			zap.Int("round", s.round),
			zap.Int("red_alive", s.state.AliveCount(TeamRed)),
			zap.Int("blue_alive", s.state.AliveCount(TeamBlue)))
		s.runRound()
	}
	rep := DetermineOutcome(s.state, s.round, s.cfg.RoundCap)
	s.log.Add(BattleEvent{Round: s.round, Phase: PhaseTurnEnd, Category: "battle", Key: "winner", Value: rep.Description})
	s.logger.Info("battle over",
		zap.String("outcome", rep.Outcome.String()),
		zap.String("description", rep.Description),
		zap.Int("rounds", rep.Rounds),
		zap.Int("red_alive", rep.RedAlive),
		zap.Int("blue_alive", rep.BlueAlive))
	return BattleReport{
		ID:      uuid.New().String(),
		Seed:    s.cfg.Seed,
		Rounds:  s.round,
		Outcome: rep,
		Log:     s.log,
		Final:   s.state,
	}
}

// RunRounds advances up to n rounds, stopping early on elimination, and
// reports how many actually ran.
func (s *Simulator) RunRounds(n int) int {
	ran := 0
	for i := 0; i < n && s.round < s.cfg.RoundCap && !s.over(); i++ {
		s.round++
		s.runRound()
		ran++
	}
	return ran
}

func (s *Simulator) over() bool {
	return s.state.AliveCount(TeamRed) == 0 || s.state.AliveCount(TeamBlue) == 0
}

func (s *Simulator) runRound() {
	for _, id := range s.initiativeOrder() {
		u, ok := s.state.Unit(id)
		if !ok || !u.Alive {
			continue
		}
		s.takeTurn(u)
		if s.over() {
			return
		}
	}
}

// initiativeOrder sorts the living roster by initiative, highest first,
// with unit id as the tie-break.
func (s *Simulator) initiativeOrder() []UnitID {
	units := s.state.AliveUnits()
	sort.Slice(units, func(i, j int) bool {
		if units[i].Stats.Initiative != units[j].Stats.Initiative {
			return units[i].Stats.Initiative > units[j].Stats.Initiative
		}
		return units[i].ID < units[j].ID
	})
	out := make([]UnitID, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}

// --- Turn policy ---

// takeTurn runs one unit's full phase sequence under a fixed policy:
// reload when dry, otherwise close on the nearest enemy and strike when
// in range, or arm vigilance when the gap cannot be closed this turn.
func (s *Simulator) takeTurn(u BattleUnit) {
	s.dispatch(PhaseEvent{Phase: PhaseTurnStart, ActiveUnit: u.ID, Seed: s.cfg.Seed})
	u, _ = s.state.Unit(u.ID)

	enemy, ok := s.nearestEnemy(u)
	if !ok {
		s.dispatch(PhaseEvent{Phase: PhaseTurnEnd, ActiveUnit: u.ID, Seed: s.cfg.Seed})
		return
	}
	s.logger.Debug("turn",
		zap.Int("round", s.round),
		zap.Int("unit", int(u.ID)),
		zap.String("name", u.Name),
		zap.Int("target", int(enemy.ID)))

	if s.needsReload(u.ID) {
		s.reload(u)
		s.dispatch(PhaseEvent{Phase: PhaseTurnEnd, ActiveUnit: u.ID, Seed: s.cfg.Seed})
		return
	}

	stopRange := max(1, u.Stats.Range)
	if u.Pos.Manhattan(enemy.Pos) > stopRange {
		u = s.move(u, enemy.Pos, stopRange)
		if !u.Alive {
			return
		}
		enemy, _ = s.state.Unit(enemy.ID)
	}

	if enemy.Alive && u.Pos.Manhattan(enemy.Pos) <= stopRange {
		s.attackTurn(u, enemy)
	} else {
		s.tryVigilance(u)
	}

	s.dispatch(PhaseEvent{Phase: PhaseTurnEnd, ActiveUnit: u.ID, Seed: s.cfg.Seed})
}

// nearestEnemy picks the closest living enemy, lowest id on ties.
func (s *Simulator) nearestEnemy(u BattleUnit) (BattleUnit, bool) {
	var best BattleUnit
	bestDist := 0
	found := false
	for _, e := range s.state.AliveUnits() {
		if e.Team == u.Team {
			continue
		}
		d := u.Pos.Manhattan(e.Pos)
		if !found || d < bestDist || (d == bestDist && e.ID < best.ID) {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}

// --- Movement ---

// move walks u toward goal, letting the mechanics react along the way,
// and returns the unit as it stands afterwards.
func (s *Simulator) move(u BattleUnit, goal Position, stopRange int) BattleUnit {
	path := s.planPath(u, goal, u.Stats.Speed, stopRange)
	if len(path) < 2 {
		return u
	}

	out := s.resolveMovement(u.ID, path)
	s.state = out.State
	final := out.Path[len(out.Path)-1]

	s.log.Add(BattleEvent{Round: s.round, Phase: PhaseMovement, Category: "move", Key: "walk", Actor: u.ID,
		Value:  fmt.Sprintf("%d,%d => %d,%d", path[0].X, path[0].Y, final.X, final.Y),
		Amount: len(out.Path) - 1})
	if out.Stopped && out.Intercept != nil {
		s.log.Add(BattleEvent{Round: s.round, Phase: PhaseMovement, Category: "intercept", Key: "halted",
			Actor: out.Interceptor, Target: u.ID, Amount: out.Intercept.Damage})
	}
	for _, shot := range out.Shots {
		s.log.Add(BattleEvent{Round: s.round, Phase: PhaseMovement, Category: "overwatch", Key: "shot",
			Actor: shot.Watcher, Target: u.ID, Amount: shot.Result.Damage})
	}

	u, _ = s.state.Unit(u.ID)
	u.Pos = final
	s.state = s.state.WithUnit(u)
	if !u.Alive {
		s.log.Add(BattleEvent{Round: s.round, Phase: PhaseMovement, Category: "move", Key: "killed",
			Actor: u.ID, Value: "cut_down_mid_walk"})
	}

	s.dispatch(PhaseEvent{Phase: PhaseMovement, ActiveUnit: u.ID, Seed: s.cfg.Seed,
		Action: &Action{Type: ActionMove, Path: out.Path}})
	u, _ = s.state.Unit(u.ID)
	return u
}

// planPath walks greedily toward goal, longer axis first, around living
// blockers, stopping within stopRange of the goal or after maxSteps
// cells. Every step closes distance, so the walk cannot oscillate.
func (s *Simulator) planPath(u BattleUnit, goal Position, maxSteps, stopRange int) []Position {
	path := []Position{u.Pos}
	cur := u.Pos
	for len(path)-1 < maxSteps && cur.Manhattan(goal) > stopRange {
		next, ok := s.stepToward(cur, goal, u.ID)
		if !ok {
			break
		}
		path = append(path, next)
		cur = next
	}
	return path
}

func (s *Simulator) stepToward(cur, goal Position, mover UnitID) (Position, bool) {
	dx, dy := goal.X-cur.X, goal.Y-cur.Y
	xStep := Position{X: cur.X + sign(dx), Y: cur.Y}
	yStep := Position{X: cur.X, Y: cur.Y + sign(dy)}
	var cands []Position
	if abs(dx) >= abs(dy) {
		if dx != 0 {
			cands = append(cands, xStep)
		}
		if dy != 0 {
			cands = append(cands, yStep)
		}
	} else {
		if dy != 0 {
			cands = append(cands, yStep)
		}
		if dx != 0 {
			cands = append(cands, xStep)
		}
	}
	for _, c := range cands {
		if c.X < 0 || c.Y < 0 || c.X >= s.cfg.GridWidth || c.Y >= s.cfg.GridHeight {
			continue
		}
		if s.state.Occupied(c, mover) {
			continue
		}
		return c, true
	}
	return Position{}, false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// --- Attacks ---

func (s *Simulator) attackTurn(attacker, target BattleUnit) {
	s.dispatch(PhaseEvent{Phase: PhasePreAttack, ActiveUnit: attacker.ID, Target: target.ID, Seed: s.cfg.Seed})

	var action *Action
	if attacker.Capabilities.IsMage() && attacker.Pos.Manhattan(target.Pos) > 1 {
		action = &Action{Type: ActionAbility, TargetID: target.ID, AbilityID: AbilityArcaneBolt}
	}

	gate := s.gateAttack(attacker.ID, target.ID, action)
	s.state = gate.State
	if !gate.CanAttack {
		value := string(gate.Reason)
		amount := 0
		if gate.Cooldown != nil && !gate.Cooldown.Ready {
			value = "on_cooldown"
			amount = gate.Cooldown.Remaining
		}
		s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "attack", Key: "blocked",
			Actor: attacker.ID, Target: target.ID, Value: value, Amount: amount})
		s.finishAttack(attacker.ID, target.ID, action)
		return
	}

	if cr, took := s.resolveCharge(attacker.ID, target.ID); took {
		s.state = cr.State
		switch {
		case cr.Countered:
			s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "charge", Key: "countered",
				Actor: attacker.ID, Target: target.ID, Amount: cr.CounterDamage})
			if charger, ok := s.state.Unit(attacker.ID); ok && !charger.Alive {
				s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "charge", Key: "killed",
					Actor: attacker.ID, Value: "impaled_on_spear_wall"})
			}
		case cr.Success:
			s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "charge", Key: "hit",
				Actor: attacker.ID, Target: target.ID,
				Value: fmt.Sprintf("momentum=%.2f", cr.Momentum), Amount: cr.Damage})
			if tgt, ok := s.state.Unit(target.ID); ok && !tgt.Alive {
				s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "charge", Key: "killed",
					Actor: attacker.ID, Target: target.ID})
			}
		}
	} else {
		s.strikes(attacker, target.ID, gate.Mode, action)
	}

	s.finishAttack(attacker.ID, target.ID, action)
}

// finishAttack dispatches the attack and post_attack phases so processors
// can settle: charge momentum resets, phalanx re-forms around the dead.
func (s *Simulator) finishAttack(attacker, target UnitID, action *Action) {
	if action == nil {
		action = &Action{Type: ActionAttack, TargetID: target}
	}
	s.dispatch(PhaseEvent{Phase: PhaseAttack, ActiveUnit: attacker, Target: target, Action: action, Seed: s.cfg.Seed})
	s.dispatch(PhaseEvent{Phase: PhasePostAttack, ActiveUnit: attacker, Target: target, Seed: s.cfg.Seed})
}

// strikes resolves the base attack sequence: AttackCount swings, each
// dodgeable, damage max(1, atk − effective armor). Ranged gating has
// already been paid; the formation armor bonus is the only mechanic input
// here.
func (s *Simulator) strikes(attacker BattleUnit, targetID UnitID, mode FireMode, action *Action) {
	for i := 0; i < max(1, attacker.Stats.AttackCount); i++ {
		target, ok := s.state.Unit(targetID)
		if !ok || !target.Alive {
			break
		}
		if s.rng.Float64() < target.Stats.Dodge {
			s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "attack", Key: "miss",
				Actor: attacker.ID, Target: targetID, Value: "dodged"})
			continue
		}
		armor := target.Stats.Armor + s.armorBonus(targetID)
		dmg := max(1, attacker.Stats.Attack-armor)
		struck := target.Damaged(dmg)
		s.state = s.state.WithUnit(struck)
		value := ""
		if action != nil && action.Type == ActionAbility {
			value = action.AbilityID
		} else if mode == FireArc {
			value = "arc"
		}
		s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "attack", Key: "hit",
			Actor: attacker.ID, Target: targetID, Value: value, Amount: dmg})
		if !struck.Alive {
			s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "attack", Key: "killed",
				Actor: attacker.ID, Target: targetID})
			break
		}
	}
	if action != nil && action.Type == ActionAbility {
		s.state = s.commitAbility(attacker.ID, action.AbilityID)
	}
}

// --- Resource policy ---

func (s *Simulator) reload(u BattleUnit) {
	res, handled := s.tryReload(u.ID)
	if !handled {
		return
	}
	s.state = res.State
	if res.Success {
		s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "ammo", Key: "reload",
			Actor: u.ID, Value: "spent_turn_reloading", Amount: res.Ammo})
	} else {
		s.log.Add(BattleEvent{Round: s.round, Phase: PhaseAttack, Category: "ammo", Key: "reload_failed",
			Actor: u.ID, Value: string(res.Reason)})
	}
}

func (s *Simulator) tryVigilance(u BattleUnit) {
	res, handled := s.tryEnterVigilance(u.ID)
	if !handled {
		return
	}
	s.state = res.State
	if res.Success {
		s.log.Add(BattleEvent{Round: s.round, Phase: PhaseTurnEnd, Category: "overwatch", Key: "enter",
			Actor: u.ID, Value: "vigilance"})
	}
}

// --- Engine indirection ---

// Every mechanic call goes through one of these wrappers; a nil engine
// reduces each to the same identity an all-disabled engine produces.

func (s *Simulator) dispatch(ev PhaseEvent) {
	if s.engine == nil {
		return
	}
	s.state = s.engine.Dispatch(ev, s.state)
}

func (s *Simulator) resolveMovement(mover UnitID, path []Position) MoveOutcome {
	if s.engine == nil {
		return MoveOutcome{State: s.state, Path: path}
	}
	return s.engine.ResolveMovement(s.state, mover, path, s.cfg.Seed)
}

func (s *Simulator) gateAttack(attacker, target UnitID, action *Action) AttackGate {
	if s.engine == nil {
		return AttackGate{CanAttack: true, Mode: FireDirect, State: s.state}
	}
	return s.engine.GateAttack(s.state, attacker, target, action, s.cfg.Seed)
}

func (s *Simulator) resolveCharge(attacker, target UnitID) (*ChargeResult, bool) {
	if s.engine == nil {
		return nil, false
	}
	return s.engine.ResolveCharge(s.state, attacker, target, s.cfg.Seed)
}

func (s *Simulator) armorBonus(id UnitID) int {
	if s.engine == nil {
		return 0
	}
	return s.engine.ArmorBonus(s.state, id)
}

func (s *Simulator) needsReload(id UnitID) bool {
	if s.engine == nil {
		return false
	}
	return s.engine.NeedsReload(s.state, id)
}

func (s *Simulator) tryReload(id UnitID) (ReloadResult, bool) {
	if s.engine == nil {
		return ReloadResult{State: s.state}, false
	}
	return s.engine.TryReload(s.state, id)
}

func (s *Simulator) tryEnterVigilance(id UnitID) (VigilanceResult, bool) {
	if s.engine == nil {
		return VigilanceResult{State: s.state}, false
	}
	return s.engine.TryEnterVigilance(s.state, id)
}

func (s *Simulator) commitAbility(id UnitID, ability string) *BattleState {
	if s.engine == nil {
		return s.state
	}
	return s.engine.CommitAbility(s.state, id, ability)
}
