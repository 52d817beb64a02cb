package game

import (
	"github.com/cabingames/duel-server-go/internal/catalog"
	"github.com/cabingames/duel-server-go/internal/game/resource"
)

// CardState is the lifecycle state of a minted card.
type CardState int

const (
	// StateInHand: owned exclusively by the hand.
	StateInHand CardState = iota
	// StateStaged: placed into a slot this turn, not yet locked by a commit.
	StateStaged
	// StateActive: locked onto the battlefield by a round commit.
	StateActive
	// StateDead: removed from play; the id is never referenced again.
	StateDead
)

var cardStateNames = map[CardState]string{
	StateInHand: "IN_HAND",
	StateStaged: "STAGED",
	StateActive: "ACTIVE",
	StateDead:   "DEAD",
}

func (s CardState) String() string {
	if name, ok := cardStateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Card is a minted instance plus its session lifecycle state. Cards live
// in the arena; hands and slots hold ids only, so a stale id fails lookup
// instead of dangling.
type Card struct {
	*catalog.Instance
	State CardState

	// payment records what was deducted when the card was staged, so a
	// cancelled placement refunds the exact split.
	payment resource.Payment
	paid    bool
}

// arena owns every live card in the session, keyed by instance id.
type arena struct {
	cards map[int]*Card
}

func newArena() *arena {
	return &arena{cards: make(map[int]*Card)}
}

func (a *arena) add(inst *catalog.Instance) *Card {
	card := &Card{Instance: inst, State: StateInHand}
	a.cards[inst.ID] = card
	return card
}

// get resolves an id to a live card. Dead or never-minted ids miss.
func (a *arena) get(id int) (*Card, bool) {
	card, ok := a.cards[id]
	return card, ok
}

// drop marks a card dead and removes it from the arena.
func (a *arena) drop(id int) {
	if card, ok := a.cards[id]; ok {
		card.State = StateDead
		delete(a.cards, id)
	}
}
