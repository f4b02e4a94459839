package battle

import "math"

// --- Intercept Processor ---

// InterceptProcessor implements spear-wall interception: a unit with the
// spear-wall capability adjacent to an enemy's movement path may halt that
// movement and strike the mover, spending one interception charge. The
// charge processor queries this mechanic before charge damage resolves.
type InterceptProcessor struct {
	cfg InterceptConfig
}

func NewInterceptProcessor(cfg InterceptConfig) *InterceptProcessor {
	return &InterceptProcessor{cfg: cfg}
}

func (p *InterceptProcessor) Name() string { return "intercept" }

// InitializeUnit grants spear-wall units their interception pool. The pool
// is battle-long and never refilled.
func (p *InterceptProcessor) InitializeUnit(u BattleUnit, st *BattleState) *BattleState {
	if !u.Capabilities.HasSpearWall() {
		return st
	}
	if _, ok := st.Intercept(u.ID); ok {
		return st
	}
	return st.WithIntercept(u.ID, InterceptData{
		InterceptsRemaining: p.cfg.DefaultIntercepts,
		HasZoneOfControl:    u.Capabilities.ZoneOfControl(),
	})
}

// InterceptCheck is the result of scanning a movement path.
type InterceptCheck struct {
	HasIntercept    bool
	MovementBlocked bool
	Interceptor     UnitID   // first interceptor along the path
	BlockedAt       Position // the path cell adjacent to the interceptor
}

// CheckIntercept scans the mover's path cell by cell. Interception
// triggers on entering a cell adjacent to an enemy spear-wall unit with
// charges remaining; the start cell is not an entry. The first valid
// interceptor along the path wins; spent candidates are skipped silently.
func (p *InterceptProcessor) CheckIntercept(mover BattleUnit, path []Position, st *BattleState) InterceptCheck {
	for i, cell := range path {
		if i == 0 {
			continue
		}
		for _, adj := range st.AdjacentUnits(cell) {
			if !adj.IsEnemyOf(mover) || !adj.Capabilities.HasSpearWall() {
				continue
			}
			d, ok := st.Intercept(adj.ID)
			if !ok || d.InterceptsRemaining <= 0 {
				continue
			}
			return InterceptCheck{
				HasIntercept:    true,
				MovementBlocked: true,
				Interceptor:     adj.ID,
				BlockedAt:       cell,
			}
		}
	}
	return InterceptCheck{}
}

// InterceptResult is the outcome of a hard interception strike.
type InterceptResult struct {
	MovementStopped     bool
	Damage              int
	TargetHP            int
	InterceptsRemaining int
	State               *BattleState
}

// ExecuteHardIntercept halts the mover and strikes it for
// floor(atk × multiplier), spending one interception charge. The pool
// never goes negative; a spent interceptor is a no-op.
func (p *InterceptProcessor) ExecuteHardIntercept(interceptor, mover BattleUnit, st *BattleState, seed int64) InterceptResult {
	d, ok := st.Intercept(interceptor.ID)
	if !ok || d.InterceptsRemaining <= 0 {
		return InterceptResult{State: st}
	}
	dmg := int(math.Floor(float64(interceptor.Stats.Attack) * p.cfg.DamageMultiplier))
	struck := mover.Damaged(dmg)
	d.InterceptsRemaining--
	next := st.WithUnit(struck).WithIntercept(interceptor.ID, d)
	return InterceptResult{
		MovementStopped:     true,
		Damage:              dmg,
		TargetHP:            struck.HP,
		InterceptsRemaining: d.InterceptsRemaining,
		State:               next,
	}
}

// CanCounterCharge reports whether target can counter a charging attacker:
// alive and carrying the spear-wall capability. The attack-time counter
// does not spend an interception charge.
func (p *InterceptProcessor) CanCounterCharge(target BattleUnit, st *BattleState) bool {
	return target.Alive && target.Capabilities.HasSpearWall()
}

// Apply is a no-op: the interception pool is battle-long, so nothing is
// tied to the phase sequence. Spending happens in ExecuteHardIntercept.
func (p *InterceptProcessor) Apply(ev PhaseEvent, st *BattleState) *BattleState {
	return st
}
