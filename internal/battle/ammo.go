package battle

// --- Ammunition / Cooldown Tracker ---

// AmmoSentinelUnlimited is the pool value reported by units with the
// unlimited-ammo capability. It is never decremented; it is the only way
// an ammo count may be negative.
const AmmoSentinelUnlimited = -1

// AmmoProcessor owns the per-unit consumable resource pools: a finite ammo
// counter for ranged units or a per-ability cooldown map for mages. Ranged
// attacks and overwatch both draw from it.
type AmmoProcessor struct {
	cfg AmmoConfig
}

func NewAmmoProcessor(cfg AmmoConfig) *AmmoProcessor {
	return &AmmoProcessor{cfg: cfg}
}

func (p *AmmoProcessor) Name() string { return "ammunition" }

// ResourceTypeOf derives the pool type from capability tags. An explicit
// type already present on the unit's component wins.
func (p *AmmoProcessor) ResourceTypeOf(u BattleUnit, st *BattleState) ResourceType {
	if d, ok := st.Ammo(u.ID); ok && d.Type != ResourceNone {
		return d.Type
	}
	if u.Capabilities.IsMage() {
		if p.cfg.EnableMageCooldowns {
			return ResourceCooldown
		}
		return ResourceNone
	}
	if u.Capabilities.IsRanged() {
		return ResourceAmmo
	}
	return ResourceNone
}

// InitializeUnit populates the unit's resource pool from config defaults.
// Units whose derived type is none get no component at all.
func (p *AmmoProcessor) InitializeUnit(u BattleUnit, st *BattleState) *BattleState {
	if _, ok := st.Ammo(u.ID); ok {
		return st
	}
	d := AmmoData{Type: p.ResourceTypeOf(u, st)}
	switch d.Type {
	case ResourceAmmo:
		if u.Capabilities.UnlimitedAmmo() {
			d.Unlimited = true
			d.Ammo = AmmoSentinelUnlimited
			d.MaxAmmo = AmmoSentinelUnlimited
		} else {
			d.Ammo = p.cfg.DefaultAmmo
			d.MaxAmmo = p.cfg.DefaultAmmo
		}
	case ResourceCooldown:
		d.Cooldowns = map[string]int{}
		d.Quick = u.Capabilities.QuickCooldown()
	default:
		return st
	}
	return st.WithAmmo(u.ID, d)
}

// --- Ammo pool ---

// AmmoCheck reports whether a unit can spend ammunition right now.
type AmmoCheck struct {
	CanSpend bool
	Ammo     int
	Reason   Reason
}

func (p *AmmoProcessor) CheckAmmo(u BattleUnit, st *BattleState) AmmoCheck {
	d, ok := st.Ammo(u.ID)
	if !ok || d.Type != ResourceAmmo {
		return AmmoCheck{Reason: ReasonNotRanged}
	}
	if d.IsReloading {
		return AmmoCheck{Ammo: d.Ammo, Reason: ReasonReloading}
	}
	if d.Unlimited {
		return AmmoCheck{CanSpend: true, Ammo: d.Ammo}
	}
	if d.Ammo <= 0 {
		return AmmoCheck{Reason: ReasonNoAmmo}
	}
	return AmmoCheck{CanSpend: true, Ammo: d.Ammo}
}

// AmmoResult is the outcome of a consumption attempt.
type AmmoResult struct {
	Success   bool
	Remaining int
	Reason    Reason
	State     *BattleState
}

// ConsumeAmmo spends amount rounds from the unit's pool. Unlimited pools
// succeed without decrementing.
func (p *AmmoProcessor) ConsumeAmmo(u BattleUnit, st *BattleState, amount int) AmmoResult {
	d, ok := st.Ammo(u.ID)
	if !ok || d.Type != ResourceAmmo {
		return AmmoResult{Reason: ReasonNotRanged, State: st}
	}
	if d.IsReloading {
		return AmmoResult{Remaining: d.Ammo, Reason: ReasonReloading, State: st}
	}
	if d.Unlimited {
		return AmmoResult{Success: true, Remaining: d.Ammo, State: st}
	}
	if d.Ammo < amount {
		return AmmoResult{Remaining: d.Ammo, Reason: ReasonNoAmmo, State: st}
	}
	d.Ammo -= amount
	return AmmoResult{Success: true, Remaining: d.Ammo, State: st.WithAmmo(u.ID, d)}
}

// ReloadResult is the outcome of a reload attempt.
type ReloadResult struct {
	Success bool
	Ammo    int
	Reason  Reason
	State   *BattleState
}

// Reload restores the pool, up to MaxAmmo. amount <= 0 means the config
// default; a config default of 0 means a full reload. The unit counts as
// reloading until its next turn_start and cannot fire meanwhile.
func (p *AmmoProcessor) Reload(u BattleUnit, st *BattleState, amount int) ReloadResult {
	d, ok := st.Ammo(u.ID)
	if !ok || d.Type != ResourceAmmo {
		return ReloadResult{Reason: ReasonNotRanged, State: st}
	}
	if d.IsReloading {
		return ReloadResult{Ammo: d.Ammo, Reason: ReasonAlreadyReloading, State: st}
	}
	if d.Unlimited || d.Ammo >= d.MaxAmmo {
		return ReloadResult{Ammo: d.Ammo, Reason: ReasonAlreadyFull, State: st}
	}
	if amount <= 0 {
		amount = p.cfg.ReloadAmount
	}
	if amount <= 0 {
		d.Ammo = d.MaxAmmo
	} else {
		d.Ammo = min(d.MaxAmmo, d.Ammo+amount)
	}
	d.IsReloading = true
	return ReloadResult{Success: true, Ammo: d.Ammo, State: st.WithAmmo(u.ID, d)}
}

// --- Cooldowns ---

// CooldownCheck reports whether an ability is off cooldown. Units without
// a cooldown pool are never gated.
type CooldownCheck struct {
	Ready     bool
	Remaining int
}

func (p *AmmoProcessor) CheckCooldown(u BattleUnit, ability string, st *BattleState) CooldownCheck {
	d, ok := st.Ammo(u.ID)
	if !ok || d.Type != ResourceCooldown {
		return CooldownCheck{Ready: true}
	}
	r := d.Cooldowns[ability]
	return CooldownCheck{Ready: r <= 0, Remaining: r}
}

// TriggerCooldown puts an ability on cooldown. duration <= 0 means the
// config default. Quick-cooldown units shave one turn off the duration,
// never below 1.
func (p *AmmoProcessor) TriggerCooldown(u BattleUnit, ability string, st *BattleState, duration int) *BattleState {
	d, ok := st.Ammo(u.ID)
	if !ok || d.Type != ResourceCooldown {
		return st
	}
	if duration <= 0 {
		duration = p.cfg.DefaultCooldown
	}
	if d.Quick {
		duration = max(1, duration-1)
	}
	cds := d.cloneCooldowns()
	if cds == nil {
		cds = map[string]int{}
	}
	cds[ability] = duration
	d.Cooldowns = cds
	return st.WithAmmo(u.ID, d)
}

// TickCooldowns advances a unit's cooldowns by one turn: down 1, or 2 for
// quick-cooldown units. Expired entries are dropped; nothing goes below 0.
func (p *AmmoProcessor) TickCooldowns(u BattleUnit, st *BattleState) *BattleState {
	d, ok := st.Ammo(u.ID)
	if !ok || d.Type != ResourceCooldown || len(d.Cooldowns) == 0 {
		return st
	}
	step := 1
	if d.Quick {
		step = 2
	}
	cds := make(map[string]int, len(d.Cooldowns))
	for k, v := range d.Cooldowns {
		if v > step {
			cds[k] = v - step
		}
	}
	d.Cooldowns = cds
	return st.WithAmmo(u.ID, d)
}

// --- Phase hook ---

// Apply runs the bookkeeping tied to the phase sequence: at the active
// unit's turn_start its cooldowns tick and a pending reload completes.
func (p *AmmoProcessor) Apply(ev PhaseEvent, st *BattleState) *BattleState {
	if ev.Phase != PhaseTurnStart || ev.ActiveUnit == NoUnit {
		return st
	}
	u, ok := st.Unit(ev.ActiveUnit)
	if !ok || !u.Alive {
		return st
	}
	st = p.TickCooldowns(u, st)
	if d, ok := st.Ammo(u.ID); ok && d.IsReloading {
		d.IsReloading = false
		st = st.WithAmmo(u.ID, d)
	}
	return st
}
