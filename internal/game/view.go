package game

import (
	"fmt"

	"github.com/cabingames/duel-server-go/internal/game/rules"
)

// CardView is the wire-facing projection of one card.
type CardView struct {
	ID    int        `json:"id"`
	Name  string     `json:"name"`
	HP    int        `json:"hp"`
	ATK   int        `json:"atk"`
	Tags  []string   `json:"tags,omitempty"`
	Class string     `json:"class"`
	Cost  []CostView `json:"cost,omitempty"`
	State string     `json:"state"`
}

// CostView is one cost line of a card.
type CostView struct {
	Resource string `json:"resource"`
	Amount   int    `json:"amount"`
}

// SideView is one player's half of a snapshot.
type SideView struct {
	PlayerID   string              `json:"player_id"`
	Hand       []CardView          `json:"hand,omitempty"`
	HandCount  int                 `json:"hand_count"`
	Slots      [NumSlots]*CardView `json:"slots"`
	Bones      int                 `json:"bones"`
	Sacrifices int                 `json:"sacrifices"`
	Connected  bool                `json:"connected"`
}

// View is a full per-player snapshot of the session. The opponent's hand
// is count-only and their slots show only creatures revealed by the last
// resolution. Vitality is viewer-relative: positive values press toward
// the viewer's defeat.
type View struct {
	SessionID string    `json:"session_id"`
	Phase     string    `json:"phase"`
	Round     int       `json:"round"`
	Vitality  int       `json:"vitality"`
	You       SideView  `json:"you"`
	Opponent  *SideView `json:"opponent,omitempty"`
	Winner    string    `json:"winner,omitempty"`
}

// View builds the snapshot visible to playerID.
func (s *Session) View(playerID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.player(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}

	view := &View{
		SessionID: s.id,
		Phase:     rules.PhaseAwaitingFirstCommit.String(),
		You:       s.sideView(p, true, p.slots),
	}

	if s.controller != nil {
		view.Phase = s.controller.Phase().String()
		view.Round = s.controller.Round()
		view.Winner = s.controller.Winner()
	}

	view.Vitality = s.vitality
	if p != s.players[0] {
		view.Vitality = -view.Vitality
	}

	if opp := s.opponentOf(p); opp != nil {
		side := s.sideView(opp, false, s.revealed[opp.id])
		view.Opponent = &side
	}
	return view, nil
}

// Hand returns the cards currently in a player's hand, for full resends
// on reconnect.
func (s *Session) Hand(playerID string) ([]CardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.player(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	return s.handViews(p), nil
}

// sideView projects one player's half. visibleSlots controls which slot
// ids are shown; for opponents that is the revealed set, not the live one.
// Caller holds the lock.
func (s *Session) sideView(p *playerState, owner bool, visibleSlots [NumSlots]int) SideView {
	side := SideView{
		PlayerID:   p.id,
		HandCount:  len(p.hand),
		Bones:      p.pool.Bones(),
		Sacrifices: p.pool.Sacrifices(),
		Connected:  p.connected,
	}
	if owner {
		side.Hand = s.handViews(p)
	}
	for i, id := range visibleSlots {
		if id == 0 {
			continue
		}
		if card, ok := s.arena.get(id); ok {
			cv := cardView(card)
			side.Slots[i] = &cv
		}
	}
	return side
}

func (s *Session) handViews(p *playerState) []CardView {
	views := make([]CardView, 0, len(p.hand))
	for _, id := range p.hand {
		card, ok := s.arena.get(id)
		if !ok || card.State != StateInHand {
			continue
		}
		views = append(views, cardView(card))
	}
	return views
}

func cardView(card *Card) CardView {
	cv := CardView{
		ID:    card.ID,
		Name:  card.Template.Name,
		HP:    card.HP,
		ATK:   card.ATK,
		Tags:  card.Template.Tags,
		Class: string(card.Template.Class),
		State: card.State.String(),
	}
	for _, line := range card.Template.Cost {
		cv.Cost = append(cv.Cost, CostView{Resource: string(line.Resource), Amount: line.Amount})
	}
	return cv
}
