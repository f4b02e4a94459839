package battle

// Per-mechanic component records, keyed by unit id in side-tables on the
// snapshot. Each table is owned by exactly one processor; a unit has an
// entry only when it participates in that mechanic.

// --- Charge ---

// ChargeData tracks a cavalry unit's momentum build-up within one turn.
type ChargeData struct {
	Momentum       float64
	IsCharging     bool
	ChargeDistance int
	ChargeStart    Position
	Countered      bool
}

// --- Intercept ---

// InterceptData tracks a spear-wall unit's remaining interception charges.
// The pool is battle-long; it is never refilled.
type InterceptData struct {
	InterceptsRemaining int
	HasZoneOfControl    bool
}

// --- Phalanx ---

// FormationState classifies phalanx strength by aligned-ally count.
type FormationState int

const (
	FormationNone    FormationState = iota // no aligned allies
	FormationPartial                       // 1-3 aligned allies
	FormationFull                          // 4+
)

func (s FormationState) String() string {
	switch s {
	case FormationNone:
		return "none"
	case FormationPartial:
		return "partial"
	case FormationFull:
		return "full"
	default:
		return "unknown"
	}
}

// PhalanxData mirrors the formation bonuses currently granted to a unit.
// Bonuses are always derived from AdjacentAllies via CalculateBonuses and
// are never written independently of it.
type PhalanxData struct {
	InPhalanx       bool
	AdjacentAllies  int
	ArmorBonus      int
	ResolveBonus    int
	RawArmorBonus   int
	RawResolveBonus int
	CappedArmor     bool
	CappedResolve   bool
	State           FormationState
}

// --- Overwatch ---

// Vigilance is the overwatch watch state.
type Vigilance int

const (
	VigilanceInactive Vigilance = iota
	VigilanceActive
)

func (v Vigilance) String() string {
	switch v {
	case VigilanceInactive:
		return "inactive"
	case VigilanceActive:
		return "active"
	default:
		return "unknown"
	}
}

// OverwatchData is a watcher's reactive-fire state for the current round.
// Engaged lists movers already fired on in this reaction window, one shot
// per mover.
type OverwatchData struct {
	Vigilance       Vigilance
	ShotsRemaining  int
	MaxShots        int
	Range           int
	Engaged         []UnitID
	EnteredThisTurn bool
}

// HasEngaged reports whether the watcher already fired on the mover during
// the current reaction window.
func (d OverwatchData) HasEngaged(id UnitID) bool {
	for _, e := range d.Engaged {
		if e == id {
			return true
		}
	}
	return false
}

// --- Ammunition ---

// ResourceType says which resource pool gates a unit's ranged output.
type ResourceType int

const (
	ResourceNone ResourceType = iota
	ResourceAmmo
	ResourceCooldown
)

func (r ResourceType) String() string {
	switch r {
	case ResourceAmmo:
		return "ammo"
	case ResourceCooldown:
		return "cooldown"
	case ResourceNone:
		return "none"
	default:
		return "unknown"
	}
}

// AmmoData is a unit's consumable-resource pool. Unlimited pools report
// their configured ammo but are never decremented.
type AmmoData struct {
	Type        ResourceType
	Ammo        int
	MaxAmmo     int
	IsReloading bool
	Cooldowns   map[string]int
	Unlimited   bool
	Quick       bool
}

// cloneCooldowns copies the cooldown map so a derived snapshot never
// shares it with its parent.
func (d AmmoData) cloneCooldowns() map[string]int {
	if d.Cooldowns == nil {
		return nil
	}
	next := make(map[string]int, len(d.Cooldowns))
	for k, v := range d.Cooldowns {
		next[k] = v
	}
	return next
}

// --- Component tables ---

// componentTable is a copy-on-write map from unit id to one mechanic's
// component. Reads share structure; set returns a fresh table.
type componentTable[T any] struct {
	m map[UnitID]T
}

func newComponentTable[T any]() componentTable[T] {
	return componentTable[T]{m: map[UnitID]T{}}
}

func (t componentTable[T]) get(id UnitID) (T, bool) {
	v, ok := t.m[id]
	return v, ok
}

func (t componentTable[T]) set(id UnitID, v T) componentTable[T] {
	next := make(map[UnitID]T, len(t.m)+1)
	for k, old := range t.m {
		next[k] = old
	}
	next[id] = v
	return componentTable[T]{m: next}
}
