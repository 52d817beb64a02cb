package game

// VitalityBound is the magnitude at which the shared vitality track
// becomes terminal.
const VitalityBound = 5

// Creature is an immutable-input snapshot of one battlefield card for
// combat resolution.
type Creature struct {
	ID   int
	Name string
	HP   int
	ATK  int
}

// Board is a 4-slot battlefield snapshot. A nil entry is an empty slot.
type Board [NumSlots]*Creature

// Outcome reports whether a resolution pass crossed a vitality bound.
// Values are mover-relative: the mover is the player whose commit
// triggered resolution.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeMoverWins
	OutcomeMoverLoses
)

var outcomeNames = map[Outcome]string{
	OutcomeContinue:   "CONTINUE",
	OutcomeMoverWins:  "MOVER_WINS",
	OutcomeMoverLoses: "MOVER_LOSES",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// CombatResult is the full output of one resolution pass. Boards carry
// updated HP with dead creatures removed; bones payouts are one per death
// on the owning side.
type CombatResult struct {
	Mover          Board
	Opponent       Board
	MoverDeaths    []int
	OpponentDeaths []int
	MoverBones     int
	OpponentBones  int
	Vitality       int // final mover-relative track value, clamped
	Outcome        Outcome
}

// ResolveCombat compares the mover's just-committed board against the
// opponent's locked board and produces damage, deaths, payouts, and the
// round outcome.
//
// The vitality argument and result are mover-relative: positive values
// press toward the mover's defeat at +VitalityBound, negative toward the
// opponent's at -VitalityBound. Slots resolve in ascending index order.
// The first bound crossing latches the outcome, but every slot still
// completes its HP and bone bookkeeping; the only suppressed effect is
// the counter-attack once the mover has already won.
//
// The inputs are never mutated; the function is pure.
func ResolveCombat(mover, opponent Board, vitality int) CombatResult {
	res := CombatResult{
		Mover:    copyBoard(mover),
		Opponent: copyBoard(opponent),
		Vitality: vitality,
	}

	for i := 0; i < NumSlots; i++ {
		mine := res.Mover[i]
		theirs := res.Opponent[i]

		switch {
		case theirs != nil && mine == nil:
			// Unanswered hit against the mover.
			res.shiftVitality(theirs.ATK)

		case theirs == nil && mine != nil:
			// Unanswered hit against the opponent.
			res.shiftVitality(-mine.ATK)

		case theirs != nil && mine != nil:
			// Contested slot: the strikes land simultaneously, so equal
			// trades kill both creatures. The counter-strike is suppressed
			// only when the mover has already won in an earlier slot.
			mine.HP -= theirs.ATK
			if res.Outcome != OutcomeMoverWins {
				theirs.HP -= mine.ATK
			}

			if mine.HP <= 0 {
				if mine.HP < 0 {
					res.shiftVitality(-mine.HP) // overkill spills onto the mover
				}
				res.Mover[i] = nil
				res.MoverDeaths = append(res.MoverDeaths, mine.ID)
				res.MoverBones++
			}
			if theirs.HP <= 0 {
				if theirs.HP < 0 {
					res.shiftVitality(theirs.HP) // overkill presses the opponent
				}
				res.Opponent[i] = nil
				res.OpponentDeaths = append(res.OpponentDeaths, theirs.ID)
				res.OpponentBones++
			}
		}
	}

	return res
}

// shiftVitality moves the track by delta, clamps it to the bounds, and
// latches the first crossing as the outcome.
func (r *CombatResult) shiftVitality(delta int) {
	r.Vitality += delta
	if r.Vitality >= VitalityBound {
		r.Vitality = VitalityBound
		if r.Outcome == OutcomeContinue {
			r.Outcome = OutcomeMoverLoses
		}
	} else if r.Vitality <= -VitalityBound {
		r.Vitality = -VitalityBound
		if r.Outcome == OutcomeContinue {
			r.Outcome = OutcomeMoverWins
		}
	}
}

func copyBoard(b Board) Board {
	var out Board
	for i, c := range b {
		if c != nil {
			cp := *c
			out[i] = &cp
		}
	}
	return out
}

// boardFromSlots snapshots a player's battlefield, taking only creatures
// that are locked onto the field (Active state).
func boardFromSlots(a *arena, slots [NumSlots]int) Board {
	var board Board
	for i, id := range slots {
		if id == 0 {
			continue
		}
		card, ok := a.get(id)
		if !ok || card.State != StateActive {
			continue
		}
		board[i] = &Creature{
			ID:   card.ID,
			Name: card.Template.Name,
			HP:   card.HP,
			ATK:  card.ATK,
		}
	}
	return board
}
