package battle

// --- Phalanx Processor ---

// PhalanxProcessor grants armor and resolve bonuses to units standing in
// formation with orthogonally adjacent, living, facing-aligned allies.
// Bonuses are cached per unit and refreshed incrementally: only the
// neighbourhoods around a move or a death are rescanned, never the whole
// battle.
type PhalanxProcessor struct {
	cfg PhalanxConfig
}

func NewPhalanxProcessor(cfg PhalanxConfig) *PhalanxProcessor {
	return &PhalanxProcessor{cfg: cfg}
}

func (p *PhalanxProcessor) Name() string { return "phalanx" }

// InitializeUnit registers the unit in the formation table. Every unit can
// hold a formation; bonuses are populated by the first Recalculate.
func (p *PhalanxProcessor) InitializeUnit(u BattleUnit, st *BattleState) *BattleState {
	if _, ok := st.Phalanx(u.ID); ok {
		return st
	}
	return st.WithPhalanx(u.ID, PhalanxData{})
}

// RecalcTrigger names the event that forced a formation recompute.
type RecalcTrigger int

const (
	TriggerTurnStart RecalcTrigger = iota
	TriggerMovement
	TriggerUnitDeath
	TriggerPostAttack
)

func (t RecalcTrigger) String() string {
	switch t {
	case TriggerTurnStart:
		return "turn_start"
	case TriggerMovement:
		return "movement"
	case TriggerUnitDeath:
		return "unit_death"
	case TriggerPostAttack:
		return "post_attack"
	default:
		return "unknown"
	}
}

// FormationCheck is the neighbourhood scan for one unit.
type FormationCheck struct {
	CanFormPhalanx bool
	AdjacentAllies []UnitID // the aligned allies forming the phalanx
	AlignedCount   int
	TotalAdjacent  int // adjacent living allies regardless of facing
}

// DetectFormation counts the unit's orthogonally adjacent living allies
// whose facing matches. Dead units never count.
func (p *PhalanxProcessor) DetectFormation(u BattleUnit, st *BattleState) FormationCheck {
	if !u.Alive {
		return FormationCheck{}
	}
	var check FormationCheck
	for _, adj := range st.AdjacentUnits(u.Pos) {
		if adj.ID == u.ID || adj.Team != u.Team {
			continue
		}
		check.TotalAdjacent++
		if adj.Facing == u.Facing {
			check.AlignedCount++
			check.AdjacentAllies = append(check.AdjacentAllies, adj.ID)
		}
	}
	check.CanFormPhalanx = check.AlignedCount > 0
	return check
}

// PhalanxBonuses is the bonus set derived from an aligned-ally count.
type PhalanxBonuses struct {
	ArmorBonus      int
	ResolveBonus    int
	RawArmorBonus   int
	RawResolveBonus int
	CappedArmor     bool
	CappedResolve   bool
	State           FormationState
}

// CalculateBonuses derives formation bonuses from the aligned-ally count.
// Bonuses scale linearly per ally and saturate at the configured caps;
// formation state is none at 0 allies, partial at 1-3, full at 4+.
func CalculateBonuses(alignedCount int, cfg PhalanxConfig) PhalanxBonuses {
	b := PhalanxBonuses{
		RawArmorBonus:   alignedCount * cfg.PerAllyArmor,
		RawResolveBonus: alignedCount * cfg.PerAllyResolve,
	}
	b.ArmorBonus = min(cfg.MaxArmorBonus, b.RawArmorBonus)
	b.ResolveBonus = min(cfg.MaxResolveBonus, b.RawResolveBonus)
	b.CappedArmor = b.RawArmorBonus > b.ArmorBonus
	b.CappedResolve = b.RawResolveBonus > b.ResolveBonus
	switch {
	case alignedCount <= 0:
		b.State = FormationNone
	case alignedCount <= 3:
		b.State = FormationPartial
	default:
		b.State = FormationFull
	}
	return b
}

// EffectiveArmor is base armor plus the unit's current phalanx bonus.
func (p *PhalanxProcessor) EffectiveArmor(u BattleUnit, st *BattleState) int {
	d, ok := st.Phalanx(u.ID)
	if !ok {
		return u.Stats.Armor
	}
	return u.Stats.Armor + d.ArmorBonus
}

// EffectiveResolve is current resolve plus the unit's phalanx bonus.
func (p *PhalanxProcessor) EffectiveResolve(u BattleUnit, st *BattleState) int {
	d, ok := st.Phalanx(u.ID)
	if !ok {
		return u.Resolve
	}
	return u.Resolve + d.ResolveBonus
}

// IsInPhalanx reports whether the unit currently holds a formation.
func (p *PhalanxProcessor) IsInPhalanx(u BattleUnit, st *BattleState) bool {
	d, ok := st.Phalanx(u.ID)
	return ok && d.InPhalanx
}

// ClearPhalanx strips the unit's formation state: bonuses to 0, state to
// none.
func (p *PhalanxProcessor) ClearPhalanx(u BattleUnit, st *BattleState) *BattleState {
	if _, ok := st.Phalanx(u.ID); !ok {
		return st
	}
	return st.WithPhalanx(u.ID, PhalanxData{})
}

// RecalcResult summarizes a formation recompute.
type RecalcResult struct {
	State              *BattleState
	FormationsChanged  int
	ArmorBonusChange   int
	ResolveBonusChange int
}

// Recalculate refreshes formation state for the neighbourhoods around the
// given epicenters; with none it sweeps the whole roster. Dead units are
// cleared. Repeated calls with no intervening state change are no-ops, so
// the recompute never drifts.
func (p *PhalanxProcessor) Recalculate(st *BattleState, trigger RecalcTrigger, epicenters ...UnitID) RecalcResult {
	res := RecalcResult{State: st}
	next := st
	for _, u := range p.affectedUnits(st, epicenters) {
		prev, _ := next.Phalanx(u.ID)
		var d PhalanxData
		if u.Alive {
			check := p.DetectFormation(u, next)
			b := CalculateBonuses(check.AlignedCount, p.cfg)
			d = PhalanxData{
				InPhalanx:       check.AlignedCount > 0,
				AdjacentAllies:  check.AlignedCount,
				ArmorBonus:      b.ArmorBonus,
				ResolveBonus:    b.ResolveBonus,
				RawArmorBonus:   b.RawArmorBonus,
				RawResolveBonus: b.RawResolveBonus,
				CappedArmor:     b.CappedArmor,
				CappedResolve:   b.CappedResolve,
				State:           b.State,
			}
		}
		if d != prev {
			next = next.WithPhalanx(u.ID, d)
			res.FormationsChanged++
			res.ArmorBonusChange += d.ArmorBonus - prev.ArmorBonus
			res.ResolveBonusChange += d.ResolveBonus - prev.ResolveBonus
		}
	}
	res.State = next
	return res
}

// affectedUnits resolves the units to rescan: each epicenter plus every
// living unit adjacent to it. No epicenters means the full roster.
func (p *PhalanxProcessor) affectedUnits(st *BattleState, epicenters []UnitID) []BattleUnit {
	if len(epicenters) == 0 {
		return st.Units()
	}
	seen := make(map[UnitID]bool, len(epicenters)*5)
	var out []BattleUnit
	add := func(u BattleUnit) {
		if !seen[u.ID] {
			seen[u.ID] = true
			out = append(out, u)
		}
	}
	for _, id := range epicenters {
		u, ok := st.Unit(id)
		if !ok {
			continue
		}
		add(u)
		for _, adj := range st.AdjacentUnits(u.Pos) {
			add(adj)
		}
	}
	return out
}

// Apply refreshes formations at the points where adjacency changes: a full
// sweep at turn_start, the move neighbourhoods after the active unit
// walks, and the victim's neighbourhood after a lethal attack.
func (p *PhalanxProcessor) Apply(ev PhaseEvent, st *BattleState) *BattleState {
	switch ev.Phase {
	case PhaseTurnStart:
		return p.Recalculate(st, TriggerTurnStart).State
	case PhaseMovement:
		if ev.Action == nil || ev.Action.Type != ActionMove || len(ev.Action.Path) == 0 {
			return st
		}
		ids := []UnitID{ev.ActiveUnit}
		for _, adj := range st.AdjacentUnits(ev.Action.Path[0]) {
			ids = append(ids, adj.ID)
		}
		return p.Recalculate(st, TriggerMovement, ids...).State
	case PhasePostAttack:
		var ids []UnitID
		if t, ok := st.Unit(ev.Target); ok && !t.Alive {
			ids = append(ids, t.ID)
			for _, adj := range st.AdjacentUnits(t.Pos) {
				ids = append(ids, adj.ID)
			}
		}
		if a, ok := st.Unit(ev.ActiveUnit); ok && !a.Alive {
			ids = append(ids, a.ID)
			for _, adj := range st.AdjacentUnits(a.Pos) {
				ids = append(ids, adj.ID)
			}
		}
		if len(ids) == 0 {
			return st
		}
		return p.Recalculate(st, TriggerUnitDeath, ids...).State
	}
	return st
}
