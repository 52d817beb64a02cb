package game

import "errors"

// Session errors. All of these are recovered at the gateway boundary; the
// session itself stays consistent after any of them.
var (
	// ErrIllegalPhaseAction is returned when a player acts outside their
	// window: wrong phase, acted last, or the game is over.
	ErrIllegalPhaseAction = errors.New("action not legal in current phase")

	// ErrInsufficientResource is returned when a cost exceeds the player's
	// bones plus sacrifice ledger. The card stays in hand.
	ErrInsufficientResource = errors.New("insufficient resources")

	// ErrSlotIndexOutOfRange is returned for a malformed slot index.
	ErrSlotIndexOutOfRange = errors.New("slot index out of range")

	// ErrSessionFull is returned when a third distinct player id joins.
	ErrSessionFull = errors.New("session already has two players")

	// ErrPlayerNotConnected is returned when an action targets a player id
	// with no live connection.
	ErrPlayerNotConnected = errors.New("player not connected")

	// ErrUnknownCard is returned when a card id does not resolve in the
	// arena. Stale ids from dead cards land here.
	ErrUnknownCard = errors.New("unknown card id")

	// ErrUnknownPlayer is returned when a player id is not part of the
	// session.
	ErrUnknownPlayer = errors.New("unknown player id")

	// ErrSlotOccupied is returned when a placement names a slot that
	// already holds a creature.
	ErrSlotOccupied = errors.New("slot already occupied")
)
