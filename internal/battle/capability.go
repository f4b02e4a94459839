package battle

// --- Capabilities ---

// Capability is a fixed behavioural marker a unit can carry. Mechanics
// dispatch on set membership; there is no string matching anywhere in the
// engine, so a new mechanic cannot silently typo a tag.
type Capability uint8

const (
	CapCharge         Capability = iota // cavalry: builds momentum while moving
	CapSpearWall                        // halts adjacent chargers and counters them
	CapRanged                           // attacks at range, spends ammunition
	CapMage                             // abilities run on cooldowns, not ammo
	CapArcFire                          // may lob shots over blocking units
	CapLoSTransparent                   // never blocks another unit's line of sight
	CapUnlimitedAmmo                    // ammo pool is never decremented
	CapQuickCooldown                    // cooldowns recover at double rate
	CapZoneOfControl                    // projects control into adjacent cells
	capabilityCount                     // sentinel
)

func (c Capability) String() string {
	switch c {
	case CapCharge:
		return "charge"
	case CapSpearWall:
		return "spear_wall"
	case CapRanged:
		return "ranged"
	case CapMage:
		return "mage"
	case CapArcFire:
		return "arc_fire"
	case CapLoSTransparent:
		return "los_transparent"
	case CapUnlimitedAmmo:
		return "unlimited_ammo"
	case CapQuickCooldown:
		return "quick_cooldown"
	case CapZoneOfControl:
		return "zone_of_control"
	default:
		return "unknown"
	}
}

// ParseCapability resolves a template tag name to its Capability.
func ParseCapability(name string) (Capability, bool) {
	for c := Capability(0); c < capabilityCount; c++ {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// CapabilitySet is a bitset over Capability values. The zero value is the
// empty set.
type CapabilitySet uint16

// NewCapabilitySet builds a set from the given markers.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

func (s CapabilitySet) Has(c Capability) bool {
	return s&(1<<c) != 0
}

func (s CapabilitySet) With(c Capability) CapabilitySet {
	return s | 1<<c
}

func (s CapabilitySet) Without(c Capability) CapabilitySet {
	return s &^ (1 << c)
}

// List returns the members in declaration order.
func (s CapabilitySet) List() []Capability {
	var out []Capability
	for c := Capability(0); c < capabilityCount; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// --- Typed accessors ---

func (s CapabilitySet) CanCharge() bool      { return s.Has(CapCharge) }
func (s CapabilitySet) HasSpearWall() bool   { return s.Has(CapSpearWall) }
func (s CapabilitySet) IsRanged() bool       { return s.Has(CapRanged) }
func (s CapabilitySet) IsMage() bool         { return s.Has(CapMage) }
func (s CapabilitySet) CanArcFire() bool     { return s.Has(CapArcFire) }
func (s CapabilitySet) LoSTransparent() bool { return s.Has(CapLoSTransparent) }
func (s CapabilitySet) UnlimitedAmmo() bool  { return s.Has(CapUnlimitedAmmo) }
func (s CapabilitySet) QuickCooldown() bool  { return s.Has(CapQuickCooldown) }
func (s CapabilitySet) ZoneOfControl() bool  { return s.Has(CapZoneOfControl) }
