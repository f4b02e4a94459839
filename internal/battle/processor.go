package battle

// --- Processor composition ---

// Processor is one battle mechanic hooked into the phase sequence. Apply
// never mutates st: it returns st unchanged or a new snapshot, and the
// caller threads the result into the next processor.
type Processor interface {
	Name() string
	Apply(ev PhaseEvent, st *BattleState) *BattleState
}

// unitInitializer is implemented by processors that seed per-unit
// component state at battle start.
type unitInitializer interface {
	InitializeUnit(u BattleUnit, st *BattleState) *BattleState
}

// InterceptQuery is the slice of the intercept mechanic the charge
// processor depends on. The engine injects it at construction; processors
// never reach into each other directly.
type InterceptQuery interface {
	CheckIntercept(mover BattleUnit, path []Position, st *BattleState) InterceptCheck
	CanCounterCharge(target BattleUnit, st *BattleState) bool
}

// AmmoGate is the slice of the ammunition mechanic the overwatch processor
// depends on, injected at engine construction.
type AmmoGate interface {
	CheckAmmo(u BattleUnit, st *BattleState) AmmoCheck
	ConsumeAmmo(u BattleUnit, st *BattleState, amount int) AmmoResult
}
