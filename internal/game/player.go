package game

import (
	"github.com/cabingames/duel-server-go/internal/game/resource"
)

// NumSlots is the fixed battlefield width per player.
const NumSlots = 4

// playerState is the per-player-identity store. It is keyed by player id,
// not by connection, so a disconnect leaves it untouched.
type playerState struct {
	id        string
	hand      []int          // ordered card ids, exclusive owner until staged
	slots     [NumSlots]int  // card ids; 0 means empty
	pool      *resource.Pool // bones + sacrifice ledger
	connected bool
}

func newPlayerState(id string) *playerState {
	return &playerState{
		id:        id,
		hand:      make([]int, 0, 8),
		pool:      resource.NewPool(),
		connected: true,
	}
}

// handIndex returns the position of a card id in the hand, or -1.
func (p *playerState) handIndex(cardID int) int {
	for i, id := range p.hand {
		if id == cardID {
			return i
		}
	}
	return -1
}

// removeFromHand drops a card id from the hand list if present.
func (p *playerState) removeFromHand(cardID int) {
	if i := p.handIndex(cardID); i >= 0 {
		p.hand = append(p.hand[:i], p.hand[i+1:]...)
	}
}

// slotOf returns the slot index holding cardID, or -1.
func (p *playerState) slotOf(cardID int) int {
	for i, id := range p.slots {
		if id == cardID {
			return i
		}
	}
	return -1
}

// clearSlot empties the slot holding cardID, if any.
func (p *playerState) clearSlot(cardID int) {
	if i := p.slotOf(cardID); i >= 0 {
		p.slots[i] = 0
	}
}
