package battle

import "math"

// --- Charge Processor ---

// ChargeProcessor implements cavalry momentum: distance moved before an
// attack scales its damage and shocks the target's resolve. It queries the
// intercept mechanic to learn whether a charge is countered before damage
// resolves.
type ChargeProcessor struct {
	cfg       ChargeConfig
	intercept InterceptQuery // nil when the intercept mechanic is not registered
}

func NewChargeProcessor(cfg ChargeConfig, intercept InterceptQuery) *ChargeProcessor {
	return &ChargeProcessor{cfg: cfg, intercept: intercept}
}

func (p *ChargeProcessor) Name() string { return "charge" }

// InitializeUnit seeds charge state for cavalry, anchored at its spawn
// position.
func (p *ChargeProcessor) InitializeUnit(u BattleUnit, st *BattleState) *BattleState {
	if !u.Capabilities.CanCharge() {
		return st
	}
	if _, ok := st.Charge(u.ID); ok {
		return st
	}
	return st.WithCharge(u.ID, ChargeData{ChargeStart: u.Pos})
}

// CalculateMomentum maps distance moved to a damage multiplier bonus.
// Below the minimum charge distance momentum is 0, without error; above it
// momentum is distance × per-cell rate, clamped to the configured maximum.
func CalculateMomentum(distance int, cfg ChargeConfig) float64 {
	if distance < cfg.MinChargeDistance {
		return 0
	}
	return math.Min(cfg.MaxMomentum, float64(distance)*cfg.MomentumPerCell)
}

// ApplyChargeBonus scales base damage by (1 + momentum), floored.
func ApplyChargeBonus(baseDamage int, momentum float64) int {
	return int(math.Floor(float64(baseDamage) * (1 + momentum)))
}

// IsCounteredBySpearWall reports whether attacking target with momentum
// would be countered. Routed through the intercept mechanic when wired;
// the capability check is the fallback so cavalry still respects spear
// walls in configurations without the intercept processor.
func (p *ChargeProcessor) IsCounteredBySpearWall(target BattleUnit, st *BattleState) bool {
	if p.intercept != nil {
		return p.intercept.CanCounterCharge(target, st)
	}
	return target.Alive && target.Capabilities.HasSpearWall()
}

// CalculateCounterDamage is the spear wall's strike at a countered
// charger: floor(atk × multiplier).
func (p *ChargeProcessor) CalculateCounterDamage(spearman BattleUnit) int {
	return int(math.Floor(float64(spearman.Stats.Attack) * p.cfg.CounterMultiplier))
}

// TrackMovement recomputes momentum after the unit walked path. Distance
// counts cells entered: len(path) − 1.
func (p *ChargeProcessor) TrackMovement(u BattleUnit, path []Position, st *BattleState) *BattleState {
	d, ok := st.Charge(u.ID)
	if !ok {
		return st
	}
	d.ChargeDistance = max(0, len(path)-1)
	d.Momentum = CalculateMomentum(d.ChargeDistance, p.cfg)
	d.IsCharging = d.Momentum > 0
	return st.WithCharge(u.ID, d)
}

// ResetCharge zeroes the unit's charge state and re-anchors the start
// reference at its current position.
func (p *ChargeProcessor) ResetCharge(u BattleUnit, st *BattleState) *BattleState {
	if _, ok := st.Charge(u.ID); !ok {
		return st
	}
	return st.WithCharge(u.ID, ChargeData{ChargeStart: u.Pos})
}

// ChargeResult reports a resolved charge attack.
type ChargeResult struct {
	Success       bool
	Reason        Reason
	Countered     bool
	Damage        int     // dealt to the target; 0 when countered
	CounterDamage int     // taken by the charger when countered
	ChargerHP     int
	TargetHP      int
	ShockApplied  int     // resolve drained from the target
	Momentum      float64 // momentum the charge resolved with
	State         *BattleState
}

// ExecuteCharge resolves a charge attack. A spear-wall target counters it:
// the charger takes floor(spearAtk × multiplier) — fatal when it reaches
// current hp — and no bonus damage lands. Otherwise the target takes
// floor(atk × (1+momentum)) plus shock resolve damage. Momentum always
// resets after the attack, countered or not.
func (p *ChargeProcessor) ExecuteCharge(charger, target BattleUnit, st *BattleState, seed int64) ChargeResult {
	d, ok := st.Charge(charger.ID)
	if !ok || !charger.Capabilities.CanCharge() {
		return ChargeResult{Reason: ReasonNoChargeAbility, State: st}
	}
	if d.Momentum <= 0 {
		return ChargeResult{Reason: ReasonInsufficientDistance, State: st}
	}
	momentum := d.Momentum

	if p.IsCounteredBySpearWall(target, st) {
		counter := p.CalculateCounterDamage(target)
		struck := charger.Damaged(counter)
		d.Momentum = 0
		d.IsCharging = false
		d.Countered = true
		next := st.WithUnit(struck).WithCharge(charger.ID, d)
		return ChargeResult{
			Reason:        ReasonCountered,
			Countered:     true,
			CounterDamage: counter,
			ChargerHP:     struck.HP,
			TargetHP:      target.HP,
			Momentum:      momentum,
			State:         next,
		}
	}

	dmg := ApplyChargeBonus(charger.Stats.Attack, momentum)
	struck := target.Damaged(dmg)
	shock := p.cfg.ShockResolveDamage
	struck = struck.DrainedResolve(shock)
	d.Momentum = 0
	d.IsCharging = false
	next := st.WithUnit(struck).WithCharge(charger.ID, d)
	return ChargeResult{
		Success:      true,
		Damage:       dmg,
		ChargerHP:    charger.HP,
		TargetHP:     struck.HP,
		ShockApplied: shock,
		Momentum:     momentum,
		State:        next,
	}
}

// Apply wires the charge lifecycle into the phase sequence for the active
// unit: reset and re-anchor at turn_start, recompute on movement, flag a
// pending counter at pre_attack, reset momentum after any attack, final
// reset at turn_end.
func (p *ChargeProcessor) Apply(ev PhaseEvent, st *BattleState) *BattleState {
	u, ok := st.Unit(ev.ActiveUnit)
	if !ok {
		return st
	}
	d, ok := st.Charge(u.ID)
	if !ok {
		return st
	}
	switch ev.Phase {
	case PhaseTurnStart, PhaseTurnEnd:
		return st.WithCharge(u.ID, ChargeData{ChargeStart: u.Pos})
	case PhaseMovement:
		if ev.Action != nil && ev.Action.Type == ActionMove {
			return p.TrackMovement(u, ev.Action.Path, st)
		}
	case PhasePreAttack:
		if ev.Target != NoUnit && d.Momentum > 0 {
			if t, ok := st.Unit(ev.Target); ok && p.IsCounteredBySpearWall(t, st) {
				d.Countered = true
				return st.WithCharge(u.ID, d)
			}
		}
	case PhaseAttack:
		if d.Momentum != 0 || d.IsCharging {
			d.Momentum = 0
			d.IsCharging = false
			return st.WithCharge(u.ID, d)
		}
	}
	return st
}
