package battle

import "testing"

func phalanxTestConfig() PhalanxConfig {
	return PhalanxConfig{
		Enabled:         true,
		PerAllyArmor:    1,
		PerAllyResolve:  5,
		MaxArmorBonus:   5,
		MaxResolveBonus: 25,
	}
}

func TestDetectFormation_AlignedOrthogonalAllies(t *testing.T) {
	p := NewPhalanxProcessor(phalanxTestConfig())
	center := newTestUnit(1, TeamRed, 5, 5)
	left := newTestUnit(2, TeamRed, 4, 5)
	above := newTestUnit(3, TeamRed, 5, 4)
	backwards := newTestUnit(4, TeamRed, 6, 5)
	backwards.Facing = FacingWest
	enemy := newTestUnit(5, TeamBlue, 5, 6)
	diagonal := newTestUnit(6, TeamRed, 4, 4)
	st := NewBattleState([]BattleUnit{center, left, above, backwards, enemy, diagonal})

	check := p.DetectFormation(center, st)
	if !check.CanFormPhalanx {
		t.Fatal("two aligned allies should form a phalanx")
	}
	if check.AlignedCount != 2 {
		t.Fatalf("aligned=%d, want 2 (the backwards-facing ally does not count)", check.AlignedCount)
	}
	if check.TotalAdjacent != 3 {
		t.Fatalf("adjacent allies=%d, want 3", check.TotalAdjacent)
	}
}

func TestDetectFormation_DeadNeverCount(t *testing.T) {
	p := NewPhalanxProcessor(phalanxTestConfig())
	center := newTestUnit(1, TeamRed, 5, 5)
	fallen := newTestUnit(2, TeamRed, 4, 5)
	fallen.Alive = false
	fallen.HP = 0
	st := NewBattleState([]BattleUnit{center, fallen})

	if check := p.DetectFormation(center, st); check.CanFormPhalanx {
		t.Fatal("a corpse cannot hold a shield")
	}
	dead := center
	dead.Alive = false
	if check := p.DetectFormation(dead, st); check.CanFormPhalanx {
		t.Fatal("a dead unit has no formation")
	}
}

func TestCalculateBonuses_ScalingAndCaps(t *testing.T) {
	cfg := phalanxTestConfig()
	cases := []struct {
		aligned              int
		armor, resolve       int
		state                FormationState
		cappedArm, cappedRes bool
		rawArmor, rawResolve int
	}{
		{0, 0, 0, FormationNone, false, false, 0, 0},
		{1, 1, 5, FormationPartial, false, false, 1, 5},
		{3, 3, 15, FormationPartial, false, false, 3, 15},
		{4, 4, 20, FormationFull, false, false, 4, 20},
		{10, 5, 25, FormationFull, true, true, 10, 50},
	}
	for _, c := range cases {
		b := CalculateBonuses(c.aligned, cfg)
		if b.ArmorBonus != c.armor || b.ResolveBonus != c.resolve {
			t.Fatalf("aligned=%d: bonuses %d/%d, want %d/%d",
				c.aligned, b.ArmorBonus, b.ResolveBonus, c.armor, c.resolve)
		}
		if b.State != c.state {
			t.Fatalf("aligned=%d: state %s, want %s", c.aligned, b.State, c.state)
		}
		if b.CappedArmor != c.cappedArm || b.CappedResolve != c.cappedRes {
			t.Fatalf("aligned=%d: capped %v/%v, want %v/%v",
				c.aligned, b.CappedArmor, b.CappedResolve, c.cappedArm, c.cappedRes)
		}
		if b.RawArmorBonus != c.rawArmor || b.RawResolveBonus != c.rawResolve {
			t.Fatalf("aligned=%d: raw %d/%d, want %d/%d",
				c.aligned, b.RawArmorBonus, b.RawResolveBonus, c.rawArmor, c.rawResolve)
		}
	}
}

func TestRecalculate_FullSweepThenIdempotent(t *testing.T) {
	p := NewPhalanxProcessor(phalanxTestConfig())
	units := []BattleUnit{
		newTestUnit(1, TeamRed, 5, 5),
		newTestUnit(2, TeamRed, 4, 5),
		newTestUnit(3, TeamRed, 6, 5),
		newTestUnit(4, TeamBlue, 15, 5),
	}
	st := NewBattleState(units)
	for _, u := range units {
		st = p.InitializeUnit(u, st)
	}

	res := p.Recalculate(st, TriggerTurnStart)
	if res.FormationsChanged != 3 {
		t.Fatalf("changed=%d, want 3 (the lone enemy stays at none)", res.FormationsChanged)
	}
	d, _ := res.State.Phalanx(1)
	if d.AdjacentAllies != 2 || d.ArmorBonus != 2 || d.ResolveBonus != 10 || d.State != FormationPartial {
		t.Fatalf("center phalanx data = %+v, want 2 allies, +2 armor, +10 resolve, partial", d)
	}
	flank, _ := res.State.Phalanx(2)
	if flank.AdjacentAllies != 1 || flank.ArmorBonus != 1 {
		t.Fatalf("flank phalanx data = %+v, want 1 ally, +1 armor", flank)
	}

	again := p.Recalculate(res.State, TriggerTurnStart)
	if again.FormationsChanged != 0 {
		t.Fatalf("recompute without a state change flipped %d formations, want 0", again.FormationsChanged)
	}
}

func TestPhalanxApply_DeathBreaksFormation(t *testing.T) {
	p := NewPhalanxProcessor(phalanxTestConfig())
	survivor := newTestUnit(1, TeamRed, 5, 5)
	partner := newTestUnit(2, TeamRed, 4, 5)
	st := NewBattleState([]BattleUnit{survivor, partner})
	st = p.InitializeUnit(survivor, st)
	st = p.InitializeUnit(partner, st)
	st = p.Recalculate(st, TriggerTurnStart).State

	if d, _ := st.Phalanx(1); !d.InPhalanx {
		t.Fatal("pair should start in formation")
	}

	slain, _ := st.Unit(2)
	st = st.WithUnit(slain.Damaged(999))
	st = p.Apply(PhaseEvent{Phase: PhasePostAttack, ActiveUnit: 3, Target: 2}, st)

	d, _ := st.Phalanx(1)
	if d.InPhalanx || d.ArmorBonus != 0 || d.ResolveBonus != 0 {
		t.Fatalf("survivor still holds %+v after partner death, want cleared", d)
	}
	dd, _ := st.Phalanx(2)
	if dd.InPhalanx {
		t.Fatal("the dead keep no formation")
	}
}

func TestPhalanxApply_MovementRefreshesBothNeighbourhoods(t *testing.T) {
	p := NewPhalanxProcessor(phalanxTestConfig())
	mover := newTestUnit(1, TeamRed, 5, 5)
	partner := newTestUnit(2, TeamRed, 4, 5)
	st := NewBattleState([]BattleUnit{mover, partner})
	st = p.InitializeUnit(mover, st)
	st = p.InitializeUnit(partner, st)
	st = p.Recalculate(st, TriggerTurnStart).State

	// The walk happens first, then the movement event carries the path.
	walked, _ := st.Unit(1)
	path := []Position{{5, 5}, {6, 5}, {7, 5}, {8, 5}}
	walked.Pos = Position{X: 8, Y: 5}
	st = st.WithUnit(walked)
	st = p.Apply(PhaseEvent{
		Phase:      PhaseMovement,
		ActiveUnit: 1,
		Action:     &Action{Type: ActionMove, Path: path},
	}, st)

	if d, _ := st.Phalanx(1); d.InPhalanx {
		t.Fatal("mover walked out of formation but kept its bonuses")
	}
	if d, _ := st.Phalanx(2); d.InPhalanx {
		t.Fatal("abandoned partner kept its bonuses")
	}
}

func TestEffectiveArmorAndResolve(t *testing.T) {
	p := NewPhalanxProcessor(phalanxTestConfig())
	u := newTestUnit(1, TeamRed, 5, 5)
	st := NewBattleState([]BattleUnit{u})

	if got := p.EffectiveArmor(u, st); got != u.Stats.Armor {
		t.Fatalf("armor without formation data = %d, want base %d", got, u.Stats.Armor)
	}
	st = st.WithPhalanx(1, PhalanxData{InPhalanx: true, ArmorBonus: 3, ResolveBonus: 10})
	if got := p.EffectiveArmor(u, st); got != u.Stats.Armor+3 {
		t.Fatalf("armor in formation = %d, want %d", got, u.Stats.Armor+3)
	}
	if got := p.EffectiveResolve(u, st); got != u.Resolve+10 {
		t.Fatalf("resolve in formation = %d, want %d", got, u.Resolve+10)
	}
}

func TestClearPhalanx(t *testing.T) {
	p := NewPhalanxProcessor(phalanxTestConfig())
	u := newTestUnit(1, TeamRed, 5, 5)
	st := NewBattleState([]BattleUnit{u})
	st = st.WithPhalanx(1, PhalanxData{InPhalanx: true, ArmorBonus: 3, State: FormationPartial})

	st = p.ClearPhalanx(u, st)
	d, _ := st.Phalanx(1)
	if d.InPhalanx || d.ArmorBonus != 0 || d.State != FormationNone {
		t.Fatalf("cleared data = %+v, want zeroed", d)
	}
	if p.IsInPhalanx(u, st) {
		t.Fatal("IsInPhalanx should report the cleared state")
	}
}
