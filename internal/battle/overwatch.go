package battle

// --- Overwatch Processor ---

// OverwatchProcessor is the reactive-fire state machine. A watcher in the
// active vigilance state fires at enemies whose movement path crosses its
// watch range, spending one round of ammunition per shot through the
// ammunition mechanic and one shot from its per-turn budget. Ammunition
// gates eligibility independently of the budget: a watcher with shots left
// but no ammunition produces no opportunities.
type OverwatchProcessor struct {
	cfg  OverwatchConfig
	ammo AmmoGate // nil when the ammunition mechanic is not registered
}

func NewOverwatchProcessor(cfg OverwatchConfig, ammo AmmoGate) *OverwatchProcessor {
	return &OverwatchProcessor{cfg: cfg, ammo: ammo}
}

func (p *OverwatchProcessor) Name() string { return "overwatch" }

// InitializeUnit gives ranged units a watcher record with the configured
// shot budget and watch range.
func (p *OverwatchProcessor) InitializeUnit(u BattleUnit, st *BattleState) *BattleState {
	if !u.Capabilities.IsRanged() {
		return st
	}
	if _, ok := st.Overwatch(u.ID); ok {
		return st
	}
	return st.WithOverwatch(u.ID, OverwatchData{
		ShotsRemaining: p.cfg.DefaultShots,
		MaxShots:       p.cfg.DefaultShots,
		Range:          p.cfg.DefaultRange,
	})
}

// VigilanceResult reports an attempt to start watching.
type VigilanceResult struct {
	Success bool
	Reason  Reason
	State   *BattleState
}

// EnterVigilance arms the watcher. It requires available ammunition but
// consumes none. Units outside the ammunition mechanic are not gated.
func (p *OverwatchProcessor) EnterVigilance(u BattleUnit, st *BattleState) VigilanceResult {
	d, ok := st.Overwatch(u.ID)
	if !ok {
		return VigilanceResult{Reason: ReasonNotRanged, State: st}
	}
	if p.ammo != nil {
		if check := p.ammo.CheckAmmo(u, st); !check.CanSpend && check.Reason != ReasonNotRanged {
			return VigilanceResult{Reason: ReasonNoAmmo, State: st}
		}
	}
	d.Vigilance = VigilanceActive
	d.EnteredThisTurn = true
	return VigilanceResult{Success: true, State: st.WithOverwatch(u.ID, d)}
}

// OverwatchOpportunity is one watcher reacting (or failing to react) to a
// moving enemy.
type OverwatchOpportunity struct {
	Watcher     UnitID
	TriggerCell Position // first path cell inside the watcher's range
	Reason      Reason   // no_ammo when ammunition blocks the shot
}

// OverwatchCheck lists the reactions a movement path provokes.
type OverwatchCheck struct {
	HasOverwatch  bool
	Opportunities []OverwatchOpportunity
}

// CheckOverwatch scans the mover's path against every active enemy
// watcher. A watcher reacts at the first path cell inside its range, once
// per mover per reaction window, budget permitting. A watcher out of
// ammunition is listed with reason no_ammo and does not count toward
// HasOverwatch even when its shot budget is positive.
func (p *OverwatchProcessor) CheckOverwatch(mover BattleUnit, path []Position, st *BattleState) OverwatchCheck {
	var check OverwatchCheck
	for _, w := range st.Units() {
		if !w.Alive || !w.IsEnemyOf(mover) {
			continue
		}
		d, ok := st.Overwatch(w.ID)
		if !ok || d.Vigilance != VigilanceActive {
			continue
		}
		if d.ShotsRemaining <= 0 || d.HasEngaged(mover.ID) {
			continue
		}
		trigger, in := firstCellInRange(w.Pos, path, d.Range)
		if !in {
			continue
		}
		opp := OverwatchOpportunity{Watcher: w.ID, TriggerCell: trigger}
		if p.ammo != nil {
			if ac := p.ammo.CheckAmmo(w, st); !ac.CanSpend && ac.Reason != ReasonNotRanged {
				opp.Reason = ReasonNoAmmo
			}
		}
		if opp.Reason == ReasonNone {
			check.HasOverwatch = true
		}
		check.Opportunities = append(check.Opportunities, opp)
	}
	return check
}

// firstCellInRange finds where a walk first comes inside the watch range.
// The whole walk is watched, start cell included, but a path that never
// leaves its cell is not a movement.
func firstCellInRange(w Position, path []Position, r int) (Position, bool) {
	if len(path) < 2 {
		return Position{}, false
	}
	for _, c := range path {
		if w.Manhattan(c) <= r {
			return c, true
		}
	}
	return Position{}, false
}

// OverwatchShotResult reports one reactive shot. Fired is false when the
// watcher refused the shot (vigilance dropped, budget spent, or
// ammunition drained since the check).
type OverwatchShotResult struct {
	Fired          bool
	AmmoConsumed   bool
	AmmoRemaining  int
	Damage         int
	TargetHP       int
	TargetDied     bool
	ShotsRemaining int
	State          *BattleState
}

// ExecuteOverwatchShot fires one reactive shot at the target: exactly one
// round of ammunition through the ammunition mechanic, one shot off the
// budget, and the target recorded as engaged for this window. Snap shots
// strike base armor for max(1, atk − armor) damage.
func (p *OverwatchProcessor) ExecuteOverwatchShot(watcher, target BattleUnit, st *BattleState, seed int64) OverwatchShotResult {
	d, ok := st.Overwatch(watcher.ID)
	if !ok || d.Vigilance != VigilanceActive || d.ShotsRemaining <= 0 {
		return OverwatchShotResult{State: st}
	}
	var res OverwatchShotResult
	if p.ammo != nil {
		ar := p.ammo.ConsumeAmmo(watcher, st, 1)
		if !ar.Success && ar.Reason != ReasonNotRanged {
			return OverwatchShotResult{AmmoRemaining: ar.Remaining, State: st}
		}
		if ar.Success {
			res.AmmoConsumed = true
			res.AmmoRemaining = ar.Remaining
			st = ar.State
		}
	}
	dmg := max(1, watcher.Stats.Attack-target.Stats.Armor)
	struck := target.Damaged(dmg)
	d.ShotsRemaining--
	d.Engaged = append(append([]UnitID(nil), d.Engaged...), struck.ID)
	st = st.WithUnit(struck).WithOverwatch(watcher.ID, d)
	res.Fired = true
	res.Damage = dmg
	res.TargetHP = struck.HP
	res.TargetDied = !struck.Alive
	res.ShotsRemaining = d.ShotsRemaining
	res.State = st
	return res
}

// Apply resets the watcher at its own turn_start: vigilance drops, the
// budget refills, and the engaged window clears.
func (p *OverwatchProcessor) Apply(ev PhaseEvent, st *BattleState) *BattleState {
	if ev.Phase != PhaseTurnStart {
		return st
	}
	d, ok := st.Overwatch(ev.ActiveUnit)
	if !ok {
		return st
	}
	d.Vigilance = VigilanceInactive
	d.ShotsRemaining = d.MaxShots
	d.Engaged = nil
	d.EnteredThisTurn = false
	return st.WithOverwatch(ev.ActiveUnit, d)
}
