package battle

// --- Teams ---

type Team int

const (
	TeamRed Team = iota
	TeamBlue
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// Enemy returns the opposing team.
func (t Team) Enemy() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// --- Facing ---

// Facing is the cardinal direction a unit is oriented toward. Phalanx
// alignment compares facings; nothing in the engine rotates a unit after
// spawn.
type Facing int

const (
	FacingNorth Facing = iota
	FacingEast
	FacingSouth
	FacingWest
)

func (f Facing) String() string {
	switch f {
	case FacingNorth:
		return "north"
	case FacingEast:
		return "east"
	case FacingSouth:
		return "south"
	case FacingWest:
		return "west"
	default:
		return "unknown"
	}
}

// --- Position ---

// Position is an integer grid coordinate. Distances are Manhattan except
// for the line-of-sight raycast, which is continuous.
type Position struct {
	X, Y int
}

// Manhattan returns the grid distance |dx|+|dy| to q.
func (p Position) Manhattan(q Position) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// OrthAdjacent reports whether q shares an edge with p.
func (p Position) OrthAdjacent(q Position) bool {
	return p.Manhattan(q) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// clamp01 limits v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// --- Units ---

// UnitID identifies a unit within one battle. Ids are assigned from 1;
// NoUnit marks an absent actor or target.
type UnitID int

const NoUnit UnitID = 0

// Stats is the immutable stat block a unit is instantiated with.
type Stats struct {
	MaxHP       int
	Attack      int
	AttackCount int
	Armor       int
	Speed       int
	Initiative  int
	Dodge       float64 // 0-1 chance to avoid one strike
	Range       int     // attack range in cells; 1 = melee
	MaxResolve  int
}

// BattleUnit is the core unit record. Mechanic-specific state lives in
// per-mechanic component tables on the snapshot, not here.
type BattleUnit struct {
	ID           UnitID
	Name         string
	Team         Team
	Pos          Position
	Facing       Facing
	Stats        Stats
	HP           int
	Resolve      int
	Alive        bool
	Capabilities CapabilitySet
}

// IsEnemyOf reports whether the two units fight for opposing teams.
func (u BattleUnit) IsEnemyOf(other BattleUnit) bool {
	return u.Team != other.Team
}

// Damaged returns a copy of the unit after taking dmg hit points. HP floors
// at 0 and the unit dies there; it never goes negative.
func (u BattleUnit) Damaged(dmg int) BattleUnit {
	u.HP -= dmg
	if u.HP <= 0 {
		u.HP = 0
		u.Alive = false
	}
	return u
}

// DrainedResolve returns a copy of the unit after shock damage to resolve.
// Resolve floors at 0.
func (u BattleUnit) DrainedResolve(amount int) BattleUnit {
	u.Resolve -= amount
	if u.Resolve < 0 {
		u.Resolve = 0
	}
	return u
}
