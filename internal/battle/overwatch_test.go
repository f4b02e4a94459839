package battle

import "testing"

func overwatchTestConfig() OverwatchConfig {
	return OverwatchConfig{Enabled: true, DefaultShots: 2, DefaultRange: 5}
}

// overwatchFixture wires a watcher through the real ammunition tracker,
// the same coupling the engine uses.
func overwatchFixture(units ...BattleUnit) (*OverwatchProcessor, *AmmoProcessor, *BattleState) {
	ammo := NewAmmoProcessor(AmmoConfig{Enabled: true, DefaultAmmo: 6, EnableMageCooldowns: true})
	ow := NewOverwatchProcessor(overwatchTestConfig(), ammo)
	st := NewBattleState(units)
	for _, u := range units {
		st = ammo.InitializeUnit(u, st)
		st = ow.InitializeUnit(u, st)
	}
	return ow, ammo, st
}

func TestOverwatchInitialize_RangedOnly(t *testing.T) {
	archer := newTestUnit(1, TeamRed, 0, 0, CapRanged)
	militia := newTestUnit(2, TeamRed, 1, 0)
	_, _, st := overwatchFixture(archer, militia)

	d, ok := st.Overwatch(1)
	if !ok {
		t.Fatal("ranged unit should get a watcher record")
	}
	if d.ShotsRemaining != 2 || d.MaxShots != 2 || d.Range != 5 {
		t.Fatalf("watcher record = %+v, want 2 shots at range 5", d)
	}
	if _, ok := st.Overwatch(2); ok {
		t.Fatal("melee units do not watch")
	}
}

func TestEnterVigilance_RequiresAmmoButSpendsNone(t *testing.T) {
	archer := newTestUnit(1, TeamRed, 0, 0, CapRanged)
	ow, _, st := overwatchFixture(archer)

	res := ow.EnterVigilance(archer, st)
	if !res.Success {
		t.Fatalf("entering vigilance failed: %s", res.Reason)
	}
	d, _ := res.State.Overwatch(1)
	if d.Vigilance != VigilanceActive || !d.EnteredThisTurn {
		t.Fatalf("watcher = %+v, want active vigilance entered this turn", d)
	}
	if a, _ := res.State.Ammo(1); a.Ammo != 6 {
		t.Fatalf("ammo=%d, entering vigilance must not spend a round", a.Ammo)
	}
}

func TestEnterVigilance_Refusals(t *testing.T) {
	archer := newTestUnit(1, TeamRed, 0, 0, CapRanged)
	militia := newTestUnit(2, TeamRed, 1, 0)
	ow, _, st := overwatchFixture(archer, militia)

	// Drained pool blocks vigilance.
	drained, _ := st.Ammo(1)
	drained.Ammo = 0
	dry := st.WithAmmo(1, drained)
	if res := ow.EnterVigilance(archer, dry); res.Success || res.Reason != ReasonNoAmmo {
		t.Fatalf("dry archer entered vigilance: %+v", res)
	}

	// No watcher record at all.
	if res := ow.EnterVigilance(militia, st); res.Success || res.Reason != ReasonNotRanged {
		t.Fatalf("melee unit entered vigilance: %+v", res)
	}
}

func TestEnterVigilance_OutsideAmmoMechanicIsUngated(t *testing.T) {
	archer := newTestUnit(1, TeamRed, 0, 0, CapRanged)
	ammo := NewAmmoProcessor(AmmoConfig{Enabled: true, DefaultAmmo: 6})
	ow := NewOverwatchProcessor(overwatchTestConfig(), ammo)
	st := NewBattleState([]BattleUnit{archer})
	st = ow.InitializeUnit(archer, st) // watcher record, but no ammo pool

	if res := ow.EnterVigilance(archer, st); !res.Success {
		t.Fatalf("a watcher the ammo tracker does not know must not be gated: %+v", res)
	}
}

func TestCheckOverwatch_TriggersAtFirstCellInRange(t *testing.T) {
	watcher := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	mover := newTestUnit(2, TeamBlue, 2, 5)
	ow, _, st := overwatchFixture(watcher, mover)
	st = ow.EnterVigilance(watcher, st).State

	check := ow.CheckOverwatch(mover, []Position{{2, 5}, {3, 5}, {4, 5}, {5, 5}, {6, 5}}, st)
	if !check.HasOverwatch || len(check.Opportunities) != 1 {
		t.Fatalf("check = %+v, want one opportunity", check)
	}
	opp := check.Opportunities[0]
	if opp.Watcher != 1 || opp.TriggerCell != (Position{X: 5, Y: 5}) {
		t.Fatalf("opportunity = %+v, want watcher 1 at (5,5)", opp)
	}

	// A walk that never comes within range provokes nothing.
	far := ow.CheckOverwatch(mover, []Position{{2, 5}, {3, 5}, {4, 5}}, st)
	if far.HasOverwatch {
		t.Fatalf("path out of range still provoked: %+v", far)
	}
}

func TestCheckOverwatch_StartCellIsWatched(t *testing.T) {
	watcher := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	mover := newTestUnit(2, TeamBlue, 8, 5)
	ow, _, st := overwatchFixture(watcher, mover)
	st = ow.EnterVigilance(watcher, st).State

	check := ow.CheckOverwatch(mover, []Position{{8, 5}, {7, 5}}, st)
	if !check.HasOverwatch || check.Opportunities[0].TriggerCell != (Position{X: 8, Y: 5}) {
		t.Fatalf("check = %+v, want the start cell as trigger", check)
	}

	// Standing still is not a movement.
	if still := ow.CheckOverwatch(mover, []Position{{8, 5}}, st); still.HasOverwatch {
		t.Fatal("a single-cell path is not a walk")
	}
}

func TestCheckOverwatch_SkipsInactiveSpentAndEngaged(t *testing.T) {
	watcher := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	mover := newTestUnit(2, TeamBlue, 8, 5)
	ow, _, st := overwatchFixture(watcher, mover)
	path := []Position{{8, 5}, {7, 5}}

	if check := ow.CheckOverwatch(mover, path, st); check.HasOverwatch {
		t.Fatal("a watcher not in vigilance must not react")
	}

	armed := ow.EnterVigilance(watcher, st).State

	spent, _ := armed.Overwatch(1)
	spent.ShotsRemaining = 0
	if check := ow.CheckOverwatch(mover, path, armed.WithOverwatch(1, spent)); check.HasOverwatch {
		t.Fatal("a watcher with no budget must not react")
	}

	engaged, _ := armed.Overwatch(1)
	engaged.Engaged = []UnitID{2}
	if check := ow.CheckOverwatch(mover, path, armed.WithOverwatch(1, engaged)); check.HasOverwatch {
		t.Fatal("one reaction per mover per window")
	}
}

func TestCheckOverwatch_DryWatcherListedButNotCounted(t *testing.T) {
	watcher := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	mover := newTestUnit(2, TeamBlue, 8, 5)
	ow, _, st := overwatchFixture(watcher, mover)
	st = ow.EnterVigilance(watcher, st).State
	d, _ := st.Ammo(1)
	d.Ammo = 0
	st = st.WithAmmo(1, d)

	check := ow.CheckOverwatch(mover, []Position{{8, 5}, {7, 5}}, st)
	if check.HasOverwatch {
		t.Fatal("a dry watcher does not count as an overwatch threat")
	}
	if len(check.Opportunities) != 1 || check.Opportunities[0].Reason != ReasonNoAmmo {
		t.Fatalf("opportunities = %+v, want the dry watcher listed with no_ammo", check.Opportunities)
	}
}

func TestExecuteOverwatchShot_SpendsAmmoAndBudget(t *testing.T) {
	watcher := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	mover := newTestUnit(2, TeamBlue, 8, 5)
	ow, _, st := overwatchFixture(watcher, mover)
	st = ow.EnterVigilance(watcher, st).State

	res := ow.ExecuteOverwatchShot(watcher, mover, st, 1)
	if !res.Fired || !res.AmmoConsumed {
		t.Fatalf("shot = %+v, want fired with ammo spent", res)
	}
	if res.Damage != 8 { // max(1, 10 atk − 2 armor)
		t.Fatalf("damage=%d, want 8", res.Damage)
	}
	if res.AmmoRemaining != 5 || res.ShotsRemaining != 1 {
		t.Fatalf("ammo=%d shots=%d, want 5 and 1", res.AmmoRemaining, res.ShotsRemaining)
	}
	d, _ := res.State.Overwatch(1)
	if !d.HasEngaged(2) {
		t.Fatal("the mover should be recorded as engaged for this window")
	}
	if check := ow.CheckOverwatch(mover, []Position{{8, 5}, {7, 5}}, res.State); check.HasOverwatch {
		t.Fatal("an engaged mover must not be shot twice in one window")
	}
}

func TestExecuteOverwatchShot_CanKill(t *testing.T) {
	watcher := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	mover := newTestUnit(2, TeamBlue, 8, 5)
	mover.HP = 5
	ow, _, st := overwatchFixture(watcher, mover)
	st = ow.EnterVigilance(watcher, st).State

	res := ow.ExecuteOverwatchShot(watcher, mover, st, 1)
	if !res.TargetDied || res.TargetHP != 0 {
		t.Fatalf("shot = %+v, want a kill at 0 hp", res)
	}
	slain, _ := res.State.Unit(2)
	if slain.Alive {
		t.Fatal("snapshot should carry the death")
	}
}

func TestExecuteOverwatchShot_Refusals(t *testing.T) {
	watcher := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	mover := newTestUnit(2, TeamBlue, 8, 5)
	ow, _, st := overwatchFixture(watcher, mover)

	// Vigilance never entered.
	if res := ow.ExecuteOverwatchShot(watcher, mover, st, 1); res.Fired {
		t.Fatal("a watcher outside vigilance must refuse the shot")
	}

	armed := ow.EnterVigilance(watcher, st).State
	spent, _ := armed.Overwatch(1)
	spent.ShotsRemaining = 0
	if res := ow.ExecuteOverwatchShot(watcher, mover, armed.WithOverwatch(1, spent), 1); res.Fired {
		t.Fatal("a spent budget must refuse the shot")
	}

	dry, _ := armed.Ammo(1)
	dry.Ammo = 0
	res := ow.ExecuteOverwatchShot(watcher, mover, armed.WithAmmo(1, dry), 1)
	if res.Fired || res.AmmoRemaining != 0 {
		t.Fatalf("shot = %+v, want refused with the pool at 0", res)
	}
}

func TestOverwatch_LastRoundGatesTheWholeWindow(t *testing.T) {
	archer := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	first := newTestUnit(2, TeamBlue, 4, 5)
	second := newTestUnit(3, TeamBlue, 5, 6)
	ow, _, st := overwatchFixture(archer, first, second)

	last, _ := st.Ammo(1)
	last.Ammo = 1
	st = st.WithAmmo(1, last)
	st = ow.EnterVigilance(archer, st).State

	check := ow.CheckOverwatch(first, []Position{{4, 5}, {5, 5}, {6, 5}}, st)
	if !check.HasOverwatch {
		t.Fatal("one round left still allows the first shot")
	}
	shot := ow.ExecuteOverwatchShot(archer, first, st, 1)
	if !shot.Fired || shot.AmmoRemaining != 0 || shot.ShotsRemaining != 1 {
		t.Fatalf("shot = %+v, want the last round spent with a shot still budgeted", shot)
	}
	st = shot.State

	// The dry pool now gates every further mover, remaining budget or not.
	recheck := ow.CheckOverwatch(second, []Position{{5, 6}, {6, 6}}, st)
	if recheck.HasOverwatch {
		t.Fatal("a dry watcher must not threaten the next mover")
	}
	if len(recheck.Opportunities) != 1 || recheck.Opportunities[0].Reason != ReasonNoAmmo {
		t.Fatalf("opportunities = %+v, want one no_ammo listing", recheck.Opportunities)
	}
	if res := ow.ExecuteOverwatchShot(archer, second, st, 1); res.Fired {
		t.Fatal("the shot must be refused without ammunition")
	}
}

func TestOverwatchApply_TurnStartReset(t *testing.T) {
	watcher := newTestUnit(1, TeamRed, 10, 5, CapRanged)
	ow, _, st := overwatchFixture(watcher)
	st = ow.EnterVigilance(watcher, st).State
	d, _ := st.Overwatch(1)
	d.ShotsRemaining = 0
	d.Engaged = []UnitID{7, 9}
	st = st.WithOverwatch(1, d)

	// Another unit's turn leaves the watcher armed.
	st = ow.Apply(PhaseEvent{Phase: PhaseTurnStart, ActiveUnit: 99}, st)
	if d, _ := st.Overwatch(1); d.Vigilance != VigilanceActive {
		t.Fatal("someone else's turn_start must not reset the watcher")
	}

	st = ow.Apply(PhaseEvent{Phase: PhaseTurnStart, ActiveUnit: 1}, st)
	d, _ = st.Overwatch(1)
	if d.Vigilance != VigilanceInactive || d.ShotsRemaining != d.MaxShots || d.Engaged != nil {
		t.Fatalf("watcher = %+v, want dropped vigilance, refilled budget, cleared window", d)
	}
}
