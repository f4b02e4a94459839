package battle

// --- Engine ---

// Engine is the composition layer: it registers the enabled processors in
// tier order and resolves simulator actions through them. A disabled
// mechanic is simply absent, so an engine built from the MVP preset
// behaves exactly like running with no engine at all.
type Engine struct {
	cfg   MechanicsConfig
	procs []Processor

	ammo      *AmmoProcessor
	intercept *InterceptProcessor
	charge    *ChargeProcessor
	phalanx   *PhalanxProcessor
	los       *LoSProcessor
	overwatch *OverwatchProcessor
}

// NewEngine wires the enabled processors. Tier order is fixed and
// load-bearing: ammunition is queryable before overwatch commits to
// firing, intercept before charge damage resolves.
func NewEngine(cfg MechanicsConfig) *Engine {
	e := &Engine{cfg: cfg}
	if cfg.Ammo.Enabled {
		e.ammo = NewAmmoProcessor(cfg.Ammo)
		e.procs = append(e.procs, e.ammo)
	}
	if cfg.Intercept.Enabled {
		e.intercept = NewInterceptProcessor(cfg.Intercept)
		e.procs = append(e.procs, e.intercept)
	}
	if cfg.Charge.Enabled {
		var iq InterceptQuery
		if e.intercept != nil {
			iq = e.intercept
		}
		e.charge = NewChargeProcessor(cfg.Charge, iq)
		e.procs = append(e.procs, e.charge)
	}
	if cfg.Phalanx.Enabled {
		e.phalanx = NewPhalanxProcessor(cfg.Phalanx)
		e.procs = append(e.procs, e.phalanx)
	}
	if cfg.LoS.Enabled {
		e.los = NewLoSProcessor(cfg.LoS)
		e.procs = append(e.procs, e.los)
	}
	if cfg.Overwatch.Enabled {
		var ag AmmoGate
		if e.ammo != nil {
			ag = e.ammo
		}
		e.overwatch = NewOverwatchProcessor(cfg.Overwatch, ag)
		e.procs = append(e.procs, e.overwatch)
	}
	return e
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() MechanicsConfig {
	return e.cfg
}

// Processors returns the registered processors in tier order.
func (e *Engine) Processors() []Processor {
	return e.procs
}

// InitializeState seeds every processor's per-unit components and primes
// formation state.
func (e *Engine) InitializeState(st *BattleState) *BattleState {
	for _, proc := range e.procs {
		init, ok := proc.(unitInitializer)
		if !ok {
			continue
		}
		for _, u := range st.Units() {
			st = init.InitializeUnit(u, st)
		}
	}
	if e.phalanx != nil {
		st = e.phalanx.Recalculate(st, TriggerTurnStart).State
	}
	return st
}

// Dispatch threads one phase event through every enabled processor in
// tier order. With no processors registered it is the identity.
func (e *Engine) Dispatch(ev PhaseEvent, st *BattleState) *BattleState {
	for _, proc := range e.procs {
		st = proc.Apply(ev, st)
	}
	return st
}

// BeginTurn dispatches the active unit's turn_start.
func (e *Engine) BeginTurn(st *BattleState, unit UnitID, seed int64) *BattleState {
	return e.Dispatch(PhaseEvent{Phase: PhaseTurnStart, ActiveUnit: unit, Seed: seed}, st)
}

// EndTurn dispatches the active unit's turn_end.
func (e *Engine) EndTurn(st *BattleState, unit UnitID, seed int64) *BattleState {
	return e.Dispatch(PhaseEvent{Phase: PhaseTurnEnd, ActiveUnit: unit, Seed: seed}, st)
}

// --- Movement resolution ---

// OverwatchShotRecord pairs a firing watcher with its resolved shot.
type OverwatchShotRecord struct {
	Watcher UnitID
	Result  OverwatchShotResult
}

// MoveOutcome describes a walk resolved through the mechanics. Path is
// what the mover actually walks; the caller moves the unit there and then
// dispatches the movement event with this path.
type MoveOutcome struct {
	State       *BattleState
	Path        []Position
	Stopped     bool // halted by interception
	StoppedAt   Position
	Interceptor UnitID
	Intercept   *InterceptResult
	Shots       []OverwatchShotRecord
	MoverDied   bool
}

// ResolveMovement applies the mechanics that react to a walk: hard
// interception first, per tier order, then overwatch fire along the
// surviving path. Overwatch can kill the mover mid-walk, in which case the
// path is cut at the killing shot's trigger cell.
func (e *Engine) ResolveMovement(st *BattleState, mover UnitID, path []Position, seed int64) MoveOutcome {
	out := MoveOutcome{State: st, Path: path}
	u, ok := st.Unit(mover)
	if !ok || !u.Alive || len(path) == 0 {
		return out
	}

	if e.intercept != nil {
		check := e.intercept.CheckIntercept(u, path, st)
		if check.MovementBlocked {
			if interceptor, ok := st.Unit(check.Interceptor); ok {
				res := e.intercept.ExecuteHardIntercept(interceptor, u, st, seed)
				if res.MovementStopped {
					st = res.State
					out.Intercept = &res
					out.Interceptor = interceptor.ID
					out.Stopped = true
					out.StoppedAt = check.BlockedAt
					out.Path = trimPathAt(path, check.BlockedAt)
					u, _ = st.Unit(mover)
				}
			}
		}
	}

	if e.overwatch != nil && u.Alive {
		check := e.overwatch.CheckOverwatch(u, out.Path, st)
		for _, opp := range check.Opportunities {
			if opp.Reason != ReasonNone {
				continue
			}
			watcher, ok := st.Unit(opp.Watcher)
			if !ok || !watcher.Alive {
				continue
			}
			u, _ = st.Unit(mover)
			if !u.Alive {
				break
			}
			res := e.overwatch.ExecuteOverwatchShot(watcher, u, st, seed)
			if !res.Fired {
				continue
			}
			st = res.State
			out.Shots = append(out.Shots, OverwatchShotRecord{Watcher: watcher.ID, Result: res})
			if res.TargetDied {
				out.Path = trimPathAt(out.Path, opp.TriggerCell)
				break
			}
		}
		u, _ = st.Unit(mover)
	}

	out.MoverDied = !u.Alive
	out.State = st
	return out
}

// trimPathAt cuts the walk at the given cell, inclusive.
func trimPathAt(path []Position, at Position) []Position {
	for i, c := range path {
		if c == at {
			return path[:i+1]
		}
	}
	return path
}

// --- Attack resolution ---

// AttackGate is the pre-attack eligibility check: line of sight for ranged
// attacks, then ammunition or cooldown. On success the ammunition for the
// shot has already been spent in State.
type AttackGate struct {
	CanAttack bool
	Reason    Reason
	Mode      FireMode
	LoS       *LoSResult
	Cooldown  *CooldownCheck // set when an ability was cooldown-gated
	AmmoSpent bool
	State     *BattleState
}

// GateAttack checks whether attacker may strike target right now. Melee
// strikes are never gated. Ranged attacks need line of sight — direct
// preferred, arc as fallback — and spend one round of ammunition; ability
// attacks are gated by their cooldown instead.
func (e *Engine) GateAttack(st *BattleState, attacker, target UnitID, action *Action, seed int64) AttackGate {
	out := AttackGate{CanAttack: true, Mode: FireDirect, State: st}
	a, ok := st.Unit(attacker)
	if !ok || !a.Alive {
		out.CanAttack = false
		return out
	}
	t, ok := st.Unit(target)
	if !ok || !t.Alive {
		out.CanAttack = false
		return out
	}
	if a.Pos.Manhattan(t.Pos) <= 1 {
		return out
	}

	if e.los != nil {
		res := e.los.CheckLoS(a, t, st)
		out.LoS = &res
		out.Mode = res.RecommendedMode
		if !res.HasLoS {
			out.CanAttack = false
			out.Reason = res.BlockReason
			return out
		}
	}

	if e.ammo == nil {
		return out
	}
	if action != nil && action.Type == ActionAbility {
		cc := e.ammo.CheckCooldown(a, action.AbilityID, st)
		out.Cooldown = &cc
		if !cc.Ready {
			out.CanAttack = false
		}
		return out
	}
	if a.Capabilities.IsRanged() && !a.Capabilities.IsMage() {
		ar := e.ammo.ConsumeAmmo(a, st, 1)
		if !ar.Success {
			out.CanAttack = false
			out.Reason = ar.Reason
			return out
		}
		out.AmmoSpent = true
		out.State = ar.State
	}
	return out
}

// CommitAbility puts a just-used ability on cooldown.
func (e *Engine) CommitAbility(st *BattleState, unit UnitID, ability string) *BattleState {
	if e.ammo == nil {
		return st
	}
	u, ok := st.Unit(unit)
	if !ok {
		return st
	}
	return e.ammo.TriggerCooldown(u, ability, st, 0)
}

// ResolveCharge resolves a charge attack when the charge mechanic is
// active and the attacker carries momentum. The bool reports whether a
// charge took over the attack.
func (e *Engine) ResolveCharge(st *BattleState, attacker, target UnitID, seed int64) (*ChargeResult, bool) {
	if e.charge == nil {
		return nil, false
	}
	a, ok := st.Unit(attacker)
	if !ok {
		return nil, false
	}
	d, ok := st.Charge(a.ID)
	if !ok || d.Momentum <= 0 {
		return nil, false
	}
	t, ok := st.Unit(target)
	if !ok {
		return nil, false
	}
	res := e.charge.ExecuteCharge(a, t, st, seed)
	return &res, true
}

// --- Mechanic queries ---

// ArmorBonus is the unit's current formation armor bonus, 0 without the
// phalanx mechanic.
func (e *Engine) ArmorBonus(st *BattleState, unit UnitID) int {
	if e.phalanx == nil {
		return 0
	}
	d, ok := st.Phalanx(unit)
	if !ok {
		return 0
	}
	return d.ArmorBonus
}

// NeedsReload reports whether the unit's ammo pool is dry and a reload
// would help.
func (e *Engine) NeedsReload(st *BattleState, unit UnitID) bool {
	if e.ammo == nil {
		return false
	}
	u, ok := st.Unit(unit)
	if !ok {
		return false
	}
	check := e.ammo.CheckAmmo(u, st)
	return !check.CanSpend && check.Reason == ReasonNoAmmo
}

// TryReload starts a reload for a dry ranged unit. The bool reports
// whether the ammunition mechanic handled the request.
func (e *Engine) TryReload(st *BattleState, unit UnitID) (ReloadResult, bool) {
	if e.ammo == nil {
		return ReloadResult{State: st}, false
	}
	u, ok := st.Unit(unit)
	if !ok || !u.Alive {
		return ReloadResult{State: st}, false
	}
	return e.ammo.Reload(u, st, 0), true
}

// TryEnterVigilance arms a watcher that held its fire this turn. The bool
// reports whether the overwatch mechanic handled the request.
func (e *Engine) TryEnterVigilance(st *BattleState, unit UnitID) (VigilanceResult, bool) {
	if e.overwatch == nil {
		return VigilanceResult{State: st}, false
	}
	u, ok := st.Unit(unit)
	if !ok || !u.Alive {
		return VigilanceResult{State: st}, false
	}
	return e.overwatch.EnterVigilance(u, st), true
}
