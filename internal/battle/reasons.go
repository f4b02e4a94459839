package battle

// Reason explains why a mechanic operation could not proceed. Expected
// conditions are reported this way, never as errors; callers branch on the
// value. The vocabulary is fixed per mechanic.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonNoAmmo               Reason = "no_ammo"
	ReasonReloading            Reason = "reloading"
	ReasonAlreadyFull          Reason = "already_full"
	ReasonAlreadyReloading     Reason = "already_reloading"
	ReasonNotRanged            Reason = "not_ranged"
	ReasonCountered            Reason = "countered"
	ReasonInsufficientDistance Reason = "insufficient_distance"
	ReasonNoChargeAbility      Reason = "no_charge_ability"
	ReasonBlockedByUnit        Reason = "blocked_by_unit"
)
