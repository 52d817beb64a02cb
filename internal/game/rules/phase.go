package rules

import "fmt"

// Phase represents the commit state machine of a duel round.
type Phase int

const (
	// PhaseAwaitingFirstCommit waits for the round's first mover to lock
	// their battlefield.
	PhaseAwaitingFirstCommit Phase = iota
	// PhaseAwaitingSecondCommit waits for the other player; their commit
	// triggers combat resolution.
	PhaseAwaitingSecondCommit
	// PhaseAwaitingBonusChoice waits for the player who did not close the
	// round to pick a bonus draw.
	PhaseAwaitingBonusChoice
	// PhaseGameOver is terminal; only a fresh-session request is legal.
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseAwaitingFirstCommit:  "AWAITING_FIRST_COMMIT",
	PhaseAwaitingSecondCommit: "AWAITING_SECOND_COMMIT",
	PhaseAwaitingBonusChoice:  "AWAITING_BONUS_CHOICE",
	PhaseGameOver:             "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Controller arbitrates commit order and round advancement. It holds no
// lock of its own; the owning session serializes access.
type Controller struct {
	phase          Phase
	round          int
	lastActor      string
	firstCommitter string
	bonusChooser   string
	winner         string
}

// NewController starts a controller at round 0 awaiting the first commit.
// lastActor names the player who is treated as having acted last, i.e. the
// opponent of the chosen first mover.
func NewController(lastActor string) *Controller {
	return &Controller{
		phase:     PhaseAwaitingFirstCommit,
		lastActor: lastActor,
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Round returns the current round number (0-based).
func (c *Controller) Round() int {
	return c.round
}

// Winner returns the winning player id once the controller is terminal.
func (c *Controller) Winner() string {
	return c.winner
}

// FirstCommitter returns the player who committed first this round, or ""
// before the first commit.
func (c *Controller) FirstCommitter() string {
	return c.firstCommitter
}

// BonusChooser returns the player owed a bonus draw, or "".
func (c *Controller) BonusChooser() string {
	return c.bonusChooser
}

// CanAct reports whether playerID may stage, clear, or commit right now.
// A player whose round state is already finalized, or who acted last,
// may not act again.
func (c *Controller) CanAct(playerID string) bool {
	if c.phase != PhaseAwaitingFirstCommit && c.phase != PhaseAwaitingSecondCommit {
		return false
	}
	return playerID != c.lastActor
}

// RecordFirstCommit locks the first mover's round and moves to awaiting
// the second commit. Combat does not run yet.
func (c *Controller) RecordFirstCommit(playerID string) error {
	if c.phase != PhaseAwaitingFirstCommit {
		return fmt.Errorf("first commit in phase %s", c.phase)
	}
	if !c.CanAct(playerID) {
		return fmt.Errorf("player %s acted last", playerID)
	}
	c.firstCommitter = playerID
	c.lastActor = playerID
	c.phase = PhaseAwaitingSecondCommit
	return nil
}

// RecordSecondCommit closes the round: the caller resolves combat, then
// the first committer is owed a bonus draw. The round counter advances
// here, before the bonus choice.
func (c *Controller) RecordSecondCommit(playerID string) error {
	if c.phase != PhaseAwaitingSecondCommit {
		return fmt.Errorf("second commit in phase %s", c.phase)
	}
	if !c.CanAct(playerID) {
		return fmt.Errorf("player %s acted last", playerID)
	}
	c.lastActor = playerID
	c.bonusChooser = c.firstCommitter
	c.round++
	c.phase = PhaseAwaitingBonusChoice
	return nil
}

// ResolveBonus consumes the pending bonus draw and opens the next round.
// The chooser becomes the last actor, so the previous second committer is
// the next round's first mover.
func (c *Controller) ResolveBonus(playerID string) error {
	if c.phase != PhaseAwaitingBonusChoice {
		return fmt.Errorf("bonus choice in phase %s", c.phase)
	}
	if playerID != c.bonusChooser {
		return fmt.Errorf("bonus choice belongs to %s, not %s", c.bonusChooser, playerID)
	}
	c.lastActor = playerID
	c.bonusChooser = ""
	c.firstCommitter = ""
	c.phase = PhaseAwaitingFirstCommit
	return nil
}

// SetGameOver moves the controller to its terminal state.
func (c *Controller) SetGameOver(winnerID string) {
	c.winner = winnerID
	c.phase = PhaseGameOver
}
