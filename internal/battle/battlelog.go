package battle

import (
	"fmt"
	"strings"
)

// --- Battle Log ---

// BattleEvent is one user-facing record synthesized by the simulator from
// processor results: a move, a hit, a blocked shot, a death.
type BattleEvent struct {
	Round    int
	Phase    Phase
	Category string // move, attack, charge, intercept, overwatch, ammo, phalanx, battle
	Key      string // e.g. walk, hit, miss, killed, countered, shot, reload
	Actor    UnitID
	Target   UnitID
	Value    string
	Amount   int
}

// String renders the entry in a fixed-width, grep-friendly format.
func (e BattleEvent) String() string {
	actor := "--"
	if e.Actor != NoUnit {
		actor = fmt.Sprintf("u%d", e.Actor)
	}
	target := ""
	if e.Target != NoUnit {
		target = fmt.Sprintf(" → u%d", e.Target)
	}
	value := ""
	if e.Value != "" {
		value = " " + e.Value
	}
	amount := ""
	if e.Amount != 0 {
		amount = fmt.Sprintf(" (%d)", e.Amount)
	}
	return fmt.Sprintf("[R=%02d] %-10s %-4s %-10s %s%s%s%s",
		e.Round, e.Phase, actor, e.Category, e.Key, target, value, amount)
}

// BattleLog is the append-only event record for one battle. Two battles
// are equivalent when their winners, round counts, and full String()
// sequences match element-wise.
type BattleLog struct {
	entries []BattleEvent
}

func NewBattleLog() *BattleLog {
	return &BattleLog{}
}

// Add appends one event.
func (l *BattleLog) Add(e BattleEvent) {
	l.entries = append(l.entries, e)
}

// Entries returns all events in order. The slice is shared; do not modify.
func (l *BattleLog) Entries() []BattleEvent {
	return l.entries
}

func (l *BattleLog) Len() int {
	return len(l.entries)
}

// Filter returns events matching category, and key if non-empty.
func (l *BattleLog) Filter(category, key string) []BattleEvent {
	var out []BattleEvent
	for _, e := range l.entries {
		if e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterActor returns the events a unit performed.
func (l *BattleLog) FilterActor(id UnitID) []BattleEvent {
	var out []BattleEvent
	for _, e := range l.entries {
		if e.Actor == id {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory counts events in a category.
func (l *BattleLog) CountCategory(category string) int {
	n := 0
	for _, e := range l.entries {
		if e.Category == category {
			n++
		}
	}
	return n
}

// LastOf returns the most recent event matching category and key.
func (l *BattleLog) LastOf(category, key string) (BattleEvent, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.Category == category && (key == "" || e.Key == key) {
			return e, true
		}
	}
	return BattleEvent{}, false
}

// HasEntry reports whether any event matches category, key, and value
// substring.
func (l *BattleLog) HasEntry(category, key, valueContains string) bool {
	for _, e := range l.entries {
		if e.Category == category && (key == "" || e.Key == key) &&
			(valueContains == "" || strings.Contains(e.Value, valueContains)) {
			return true
		}
	}
	return false
}

// Lines renders every entry; the sequence is the equivalence basis for
// comparing battles.
func (l *BattleLog) Lines() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.String()
	}
	return out
}

// Format joins all rendered entries, one per line.
func (l *BattleLog) Format() string {
	return strings.Join(l.Lines(), "\n")
}

// Summary renders a closing block: survivors and hit points per team,
// then an event histogram in first-seen order.
func (l *BattleLog) Summary(rounds int, st *BattleState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- battle summary: %d rounds, %d events ---\n", rounds, len(l.entries))
	for _, team := range []Team{TeamRed, TeamBlue} {
		alive, total, hp := 0, 0, 0
		for _, u := range st.Units() {
			if u.Team != team {
				continue
			}
			total++
			if u.Alive {
				alive++
				hp += u.HP
			}
		}
		fmt.Fprintf(&b, "%s: %d/%d alive, %d hp remaining\n", team, alive, total, hp)
	}
	counts := map[string]int{}
	var order []string
	for _, e := range l.entries {
		if counts[e.Category] == 0 {
			order = append(order, e.Category)
		}
		counts[e.Category]++
	}
	for _, c := range order {
		fmt.Fprintf(&b, "  %-10s %d\n", c, counts[c])
	}
	return b.String()
}
