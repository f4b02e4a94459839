package battle

import "sort"

// --- Line-of-Sight Processor ---

// LoSProcessor classifies the firing line between an attacker and a
// target. It keeps no per-unit state: blocking and arc-fire are capability
// questions, so the whole mechanic is a pure query.
type LoSProcessor struct {
	cfg LoSConfig
}

func NewLoSProcessor(cfg LoSConfig) *LoSProcessor {
	return &LoSProcessor{cfg: cfg}
}

func (p *LoSProcessor) Name() string { return "line_of_sight" }

// FireMode is the targeting mode recommended by a line-of-sight check.
type FireMode int

const (
	FireDirect FireMode = iota
	FireArc
	FireBlocked
)

func (m FireMode) String() string {
	switch m {
	case FireDirect:
		return "direct"
	case FireArc:
		return "arc"
	case FireBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// LoSResult classifies the firing line from attacker to target.
type LoSResult struct {
	HasLoS          bool
	DirectLoS       bool
	ArcLoS          bool
	Obstacles       []UnitID // blockers in path order, nearest first
	BlockReason     Reason
	RecommendedMode FireMode
}

// CheckLoS traces the straight line from attacker to target. Every living
// unit standing exactly on the line between them is an obstacle unless it
// is LoS-transparent; allied units block exactly like enemy units. A clear
// line recommends direct fire even when the attacker could arc; a blocked
// line falls back to arc fire for attackers with that capability and is
// otherwise blocked_by_unit.
func (p *LoSProcessor) CheckLoS(attacker, target BattleUnit, st *BattleState) LoSResult {
	type blocker struct {
		id   UnitID
		dist int
	}
	var blockers []blocker
	for _, u := range st.Units() {
		if u.ID == attacker.ID || u.ID == target.ID || !u.Alive {
			continue
		}
		if u.Capabilities.LoSTransparent() {
			continue
		}
		if onSegment(attacker.Pos, target.Pos, u.Pos) {
			blockers = append(blockers, blocker{id: u.ID, dist: attacker.Pos.Manhattan(u.Pos)})
		}
	}
	sort.Slice(blockers, func(i, j int) bool { return blockers[i].dist < blockers[j].dist })

	var res LoSResult
	for _, b := range blockers {
		res.Obstacles = append(res.Obstacles, b.id)
	}
	res.ArcLoS = attacker.Capabilities.CanArcFire()
	if len(blockers) == 0 {
		res.HasLoS = true
		res.DirectLoS = true
		res.RecommendedMode = FireDirect
		return res
	}
	if res.ArcLoS {
		res.HasLoS = true
		res.RecommendedMode = FireArc
		return res
	}
	res.BlockReason = ReasonBlockedByUnit
	res.RecommendedMode = FireBlocked
	return res
}

// onSegment reports whether c lies exactly on the segment a→b, endpoints
// excluded. On an integer grid this is collinearity plus the bounding box,
// which covers orthogonal lines, exact diagonals, and any longer ray that
// passes through whole cells.
func onSegment(a, b, c Position) bool {
	if c == a || c == b {
		return false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	px, py := c.X-a.X, c.Y-a.Y
	if dx*py-dy*px != 0 {
		return false
	}
	if px < min(0, dx) || px > max(0, dx) {
		return false
	}
	if py < min(0, dy) || py > max(0, dy) {
		return false
	}
	return true
}

// Apply is a no-op: line of sight is a pure query with no phase-tied
// state.
func (p *LoSProcessor) Apply(ev PhaseEvent, st *BattleState) *BattleState {
	return st
}
