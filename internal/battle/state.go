package battle

// --- Battle State ---

// BattleState is an immutable combat snapshot: the unit roster plus the
// per-mechanic component tables. Mutating operations return a new snapshot
// sharing unmodified structure; nothing is ever written in place, so a
// caller's only obligation is to thread the latest snapshot forward.
type BattleState struct {
	units []BattleUnit
	index map[UnitID]int // id -> roster slot; stable for the whole battle

	charge    componentTable[ChargeData]
	intercept componentTable[InterceptData]
	phalanx   componentTable[PhalanxData]
	overwatch componentTable[OverwatchData]
	ammo      componentTable[AmmoData]
}

// NewBattleState builds the initial snapshot from a roster. The roster
// order is preserved and ids must be unique.
func NewBattleState(units []BattleUnit) *BattleState {
	st := &BattleState{
		units:     append([]BattleUnit(nil), units...),
		index:     make(map[UnitID]int, len(units)),
		charge:    newComponentTable[ChargeData](),
		intercept: newComponentTable[InterceptData](),
		phalanx:   newComponentTable[PhalanxData](),
		overwatch: newComponentTable[OverwatchData](),
		ammo:      newComponentTable[AmmoData](),
	}
	for i, u := range st.units {
		st.index[u.ID] = i
	}
	return st
}

// clone copies the snapshot header. Slices, tables and the id index remain
// shared until a With* writes them.
func (st *BattleState) clone() *BattleState {
	c := *st
	return &c
}

// Unit returns the unit with the given id.
func (st *BattleState) Unit(id UnitID) (BattleUnit, bool) {
	i, ok := st.index[id]
	if !ok {
		return BattleUnit{}, false
	}
	return st.units[i], true
}

// Units returns the full roster in order. The returned slice is shared and
// must not be modified.
func (st *BattleState) Units() []BattleUnit {
	return st.units
}

// AliveUnits returns the living units in roster order.
func (st *BattleState) AliveUnits() []BattleUnit {
	var out []BattleUnit
	for _, u := range st.units {
		if u.Alive {
			out = append(out, u)
		}
	}
	return out
}

// AliveCount returns the number of living units on the given team.
func (st *BattleState) AliveCount(team Team) int {
	n := 0
	for _, u := range st.units {
		if u.Alive && u.Team == team {
			n++
		}
	}
	return n
}

// UnitAt returns the living unit occupying the cell, if any. Dead units do
// not occupy cells.
func (st *BattleState) UnitAt(p Position) (BattleUnit, bool) {
	for _, u := range st.units {
		if u.Alive && u.Pos == p {
			return u, true
		}
	}
	return BattleUnit{}, false
}

// Occupied reports whether a living unit other than ignore stands on p.
func (st *BattleState) Occupied(p Position, ignore UnitID) bool {
	u, ok := st.UnitAt(p)
	return ok && u.ID != ignore
}

// AdjacentUnits returns the living units orthogonally adjacent to p.
func (st *BattleState) AdjacentUnits(p Position) []BattleUnit {
	var out []BattleUnit
	for _, u := range st.units {
		if u.Alive && u.Pos.OrthAdjacent(p) {
			out = append(out, u)
		}
	}
	return out
}

// WithUnit returns a snapshot with one unit replaced by id. Unknown ids
// return the receiver unchanged.
func (st *BattleState) WithUnit(u BattleUnit) *BattleState {
	i, ok := st.index[u.ID]
	if !ok {
		return st
	}
	next := st.clone()
	units := append([]BattleUnit(nil), st.units...)
	units[i] = u
	next.units = units
	return next
}

// WithUnits replaces several units in one copy.
func (st *BattleState) WithUnits(us ...BattleUnit) *BattleState {
	next := st.clone()
	units := append([]BattleUnit(nil), st.units...)
	for _, u := range us {
		if i, ok := st.index[u.ID]; ok {
			units[i] = u
		}
	}
	next.units = units
	return next
}

// --- Component access ---

func (st *BattleState) Charge(id UnitID) (ChargeData, bool) {
	return st.charge.get(id)
}

func (st *BattleState) WithCharge(id UnitID, d ChargeData) *BattleState {
	next := st.clone()
	next.charge = st.charge.set(id, d)
	return next
}

func (st *BattleState) Intercept(id UnitID) (InterceptData, bool) {
	return st.intercept.get(id)
}

func (st *BattleState) WithIntercept(id UnitID, d InterceptData) *BattleState {
	next := st.clone()
	next.intercept = st.intercept.set(id, d)
	return next
}

func (st *BattleState) Phalanx(id UnitID) (PhalanxData, bool) {
	return st.phalanx.get(id)
}

func (st *BattleState) WithPhalanx(id UnitID, d PhalanxData) *BattleState {
	next := st.clone()
	next.phalanx = st.phalanx.set(id, d)
	return next
}

func (st *BattleState) Overwatch(id UnitID) (OverwatchData, bool) {
	return st.overwatch.get(id)
}

func (st *BattleState) WithOverwatch(id UnitID, d OverwatchData) *BattleState {
	next := st.clone()
	next.overwatch = st.overwatch.set(id, d)
	return next
}

func (st *BattleState) Ammo(id UnitID) (AmmoData, bool) {
	return st.ammo.get(id)
}

func (st *BattleState) WithAmmo(id UnitID, d AmmoData) *BattleState {
	next := st.clone()
	next.ammo = st.ammo.set(id, d)
	return next
}
