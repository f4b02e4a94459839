package battle

// --- Phases ---

// Phase identifies one step of the fixed per-unit turn sequence. The
// composition layer threads every phase event through each enabled
// processor in tier order.
type Phase int

const (
	PhaseTurnStart Phase = iota
	PhaseMovement
	PhasePreAttack
	PhaseAttack
	PhasePostAttack
	PhaseTurnEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseTurnStart:
		return "turn_start"
	case PhaseMovement:
		return "movement"
	case PhasePreAttack:
		return "pre_attack"
	case PhaseAttack:
		return "attack"
	case PhasePostAttack:
		return "post_attack"
	case PhaseTurnEnd:
		return "turn_end"
	default:
		return "unknown"
	}
}

// --- Actions ---

// ActionType classifies the action carried by a phase event.
type ActionType int

const (
	ActionMove ActionType = iota
	ActionAttack
	ActionAbility
)

func (a ActionType) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionAbility:
		return "ability"
	default:
		return "unknown"
	}
}

// Action is the optional payload of a phase event. Path includes the start
// cell, so a stationary action has a path of length 1.
type Action struct {
	Type      ActionType
	Path      []Position
	TargetID  UnitID
	AbilityID string
}

// --- Events ---

// PhaseEvent is one step of the external turn loop. The seed is scoped to
// this event; processors that do not consume randomness ignore it but the
// parameter is part of the contract for interface stability.
type PhaseEvent struct {
	Phase      Phase
	ActiveUnit UnitID
	Target     UnitID
	Action     *Action
	Seed       int64
}
