package battle

import "testing"

func TestCheckLoS_ClearLinePrefersDirect(t *testing.T) {
	p := NewLoSProcessor(LoSConfig{Enabled: true})
	archer := newTestUnit(1, TeamRed, 2, 5, CapRanged, CapArcFire)
	target := newTestUnit(2, TeamBlue, 8, 5)
	st := NewBattleState([]BattleUnit{archer, target})

	res := p.CheckLoS(archer, target, st)
	if !res.HasLoS || !res.DirectLoS {
		t.Fatal("an empty line should give direct sight")
	}
	if res.RecommendedMode != FireDirect {
		t.Fatalf("mode=%s, want direct even for an arc-capable attacker", res.RecommendedMode)
	}
	if len(res.Obstacles) != 0 {
		t.Fatalf("obstacles=%v, want none", res.Obstacles)
	}
}

func TestCheckLoS_AllyBlocksLikeEnemy(t *testing.T) {
	p := NewLoSProcessor(LoSConfig{Enabled: true})
	archer := newTestUnit(1, TeamRed, 2, 5, CapRanged)
	friend := newTestUnit(2, TeamRed, 5, 5)
	target := newTestUnit(3, TeamBlue, 8, 5)
	st := NewBattleState([]BattleUnit{archer, friend, target})

	res := p.CheckLoS(archer, target, st)
	if res.HasLoS {
		t.Fatal("an allied body blocks the line exactly like an enemy one")
	}
	if res.BlockReason != ReasonBlockedByUnit || res.RecommendedMode != FireBlocked {
		t.Fatalf("reason=%s mode=%s, want blocked_by_unit/blocked", res.BlockReason, res.RecommendedMode)
	}
	if len(res.Obstacles) != 1 || res.Obstacles[0] != 2 {
		t.Fatalf("obstacles=%v, want [2]", res.Obstacles)
	}
}

func TestCheckLoS_ArcFireFallsBackOverBlockers(t *testing.T) {
	p := NewLoSProcessor(LoSConfig{Enabled: true})
	crossbow := newTestUnit(1, TeamRed, 2, 5, CapRanged, CapArcFire)
	wall := newTestUnit(2, TeamBlue, 4, 5)
	target := newTestUnit(3, TeamBlue, 8, 5)
	st := NewBattleState([]BattleUnit{crossbow, wall, target})

	res := p.CheckLoS(crossbow, target, st)
	if !res.HasLoS || res.DirectLoS {
		t.Fatal("arc fire should restore sight without claiming a direct line")
	}
	if !res.ArcLoS || res.RecommendedMode != FireArc {
		t.Fatalf("mode=%s arc=%v, want arc fallback", res.RecommendedMode, res.ArcLoS)
	}
}

func TestCheckLoS_SkipsDeadAndTransparentBlockers(t *testing.T) {
	p := NewLoSProcessor(LoSConfig{Enabled: true})
	archer := newTestUnit(1, TeamRed, 2, 5, CapRanged)
	corpse := newTestUnit(2, TeamBlue, 4, 5)
	corpse.Alive = false
	corpse.HP = 0
	ghost := newTestUnit(3, TeamBlue, 6, 5, CapLoSTransparent)
	target := newTestUnit(4, TeamBlue, 8, 5)
	st := NewBattleState([]BattleUnit{archer, corpse, ghost, target})

	res := p.CheckLoS(archer, target, st)
	if !res.DirectLoS {
		t.Fatalf("corpses and transparent units must not block; got obstacles %v", res.Obstacles)
	}
}

func TestCheckLoS_ObstaclesNearestFirst(t *testing.T) {
	p := NewLoSProcessor(LoSConfig{Enabled: true})
	archer := newTestUnit(1, TeamRed, 0, 5, CapRanged)
	far := newTestUnit(2, TeamBlue, 6, 5)
	near := newTestUnit(3, TeamBlue, 3, 5)
	target := newTestUnit(4, TeamBlue, 9, 5)
	st := NewBattleState([]BattleUnit{archer, far, near, target})

	res := p.CheckLoS(archer, target, st)
	if len(res.Obstacles) != 2 || res.Obstacles[0] != 3 || res.Obstacles[1] != 2 {
		t.Fatalf("obstacles=%v, want nearest first [3 2]", res.Obstacles)
	}
}

func TestOnSegment_Geometry(t *testing.T) {
	cases := []struct {
		name    string
		a, b, c Position
		want    bool
	}{
		{"between on a row", Position{0, 5}, Position{8, 5}, Position{4, 5}, true},
		{"between on a column", Position{3, 0}, Position{3, 6}, Position{3, 2}, true},
		{"exact diagonal", Position{0, 0}, Position{5, 5}, Position{2, 2}, true},
		{"off the line", Position{0, 5}, Position{8, 5}, Position{4, 6}, false},
		{"beyond the target", Position{0, 5}, Position{8, 5}, Position{9, 5}, false},
		{"behind the attacker", Position{2, 5}, Position{8, 5}, Position{1, 5}, false},
		{"attacker cell excluded", Position{0, 5}, Position{8, 5}, Position{0, 5}, false},
		{"target cell excluded", Position{0, 5}, Position{8, 5}, Position{8, 5}, false},
		{"off-ratio near diagonal", Position{0, 0}, Position{6, 4}, Position{3, 2}, true},
		{"non-collinear", Position{0, 0}, Position{6, 4}, Position{2, 2}, false},
	}
	for _, c := range cases {
		if got := onSegment(c.a, c.b, c.c); got != c.want {
			t.Fatalf("%s: onSegment(%v,%v,%v)=%v, want %v", c.name, c.a, c.b, c.c, got, c.want)
		}
	}
}

func TestLoSApply_IsIdentity(t *testing.T) {
	p := NewLoSProcessor(LoSConfig{Enabled: true})
	u := newTestUnit(1, TeamRed, 0, 0)
	st := NewBattleState([]BattleUnit{u})
	if got := p.Apply(PhaseEvent{Phase: PhaseAttack, ActiveUnit: 1}, st); got != st {
		t.Fatal("line of sight keeps no phase state, snapshot should pass through")
	}
}
