package battle

// --- Battle Outcome ---

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeRedVictory
	OutcomeBlueVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeRedVictory:
		return "red_victory"
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeDraw:
		return "draw"
	default:
		return "inconclusive"
	}
}

// OutcomeReport captures the verdict for one battle plus the counts it
// was decided on.
type OutcomeReport struct {
	Outcome        BattleOutcome
	Description    string
	Rounds         int
	RedAlive       int
	BlueAlive      int
	RedCasualties  int
	BlueCasualties int
}

// DetermineOutcome inspects the final snapshot and classifies the battle.
// Elimination decides outright; at the round cap the side with the lower
// casualty rate takes a marginal victory, equal rates are a stalemate.
func DetermineOutcome(st *BattleState, rounds, roundCap int) OutcomeReport {
	rep := OutcomeReport{Rounds: rounds}
	redTotal, blueTotal := 0, 0
	for _, u := range st.Units() {
		switch u.Team {
		case TeamRed:
			redTotal++
			if u.Alive {
				rep.RedAlive++
			}
		case TeamBlue:
			blueTotal++
			if u.Alive {
				rep.BlueAlive++
			}
		}
	}
	rep.RedCasualties = redTotal - rep.RedAlive
	rep.BlueCasualties = blueTotal - rep.BlueAlive

	switch {
	case rep.RedAlive == 0 && rep.BlueAlive == 0:
		rep.Outcome = OutcomeDraw
		rep.Description = "mutual_elimination"
	case rep.RedAlive == 0:
		rep.Outcome = OutcomeBlueVictory
		rep.Description = "decisive_blue_victory_red_eliminated"
	case rep.BlueAlive == 0:
		rep.Outcome = OutcomeRedVictory
		rep.Description = "decisive_red_victory_blue_eliminated"
	case roundCap > 0 && rounds >= roundCap:
		redRate := casualtyRate(rep.RedCasualties, redTotal)
		blueRate := casualtyRate(rep.BlueCasualties, blueTotal)
		switch {
		case redRate < blueRate:
			rep.Outcome = OutcomeRedVictory
			rep.Description = "marginal_red_victory_on_casualties"
		case blueRate < redRate:
			rep.Outcome = OutcomeBlueVictory
			rep.Description = "marginal_blue_victory_on_casualties"
		default:
			rep.Outcome = OutcomeDraw
			rep.Description = "stalemate_at_round_cap"
		}
	default:
		rep.Outcome = OutcomeInconclusive
		rep.Description = "battle_in_progress"
	}
	return rep
}

func casualtyRate(casualties, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(casualties) / float64(total)
}
