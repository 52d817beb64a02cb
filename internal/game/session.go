package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cabingames/duel-server-go/internal/catalog"
	"github.com/cabingames/duel-server-go/internal/game/rules"
)

// Rand is the injected randomness used for card draws and the opening
// coin flip. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// PlacementAction is the kind of an incremental placement update.
type PlacementAction string

const (
	PlacementAdd   PlacementAction = "add"
	PlacementClear PlacementAction = "clear"
)

// BonusKind selects what a pending bonus draw mints.
type BonusKind string

const (
	BonusCreations BonusKind = "creations" // random catalog creature
	BonusSquirrels BonusKind = "squirrels" // fixed starter creature
)

const startingRandomDraws = 3

// Session is the authoritative state of one two-player duel. Every
// mutation is serialized behind a single session-wide mutex; there is no
// per-player locking because each action needs session-wide visibility.
type Session struct {
	mu sync.Mutex

	id      string
	logger  *zap.Logger
	catalog *catalog.Catalog
	minter  *catalog.Minter
	rng     Rand

	controller *rules.Controller
	arena      *arena
	players    []*playerState

	// vitality is the shared track. Positive values press toward the
	// defeat of the first-seated player; the combat resolver works in
	// mover-relative terms and the session converts at the boundary.
	vitality int

	// locked is the first committer's battlefield snapshot for the round,
	// hidden from the opponent until they commit themselves.
	locked   Board
	lockedBy string

	// revealed holds, per player, the slots the opponent is allowed to
	// see: creatures that survived the last resolution.
	revealed map[string][NumSlots]int

	// newRoundRequests tracks which players asked for a fresh session.
	// Reset when the fresh session starts.
	newRoundRequests map[string]bool

	started bool
}

// NewSession creates an empty session waiting for two players.
func NewSession(cat *catalog.Catalog, rng Rand, logger *zap.Logger) *Session {
	return &Session{
		id:               uuid.NewString(),
		logger:           logger,
		catalog:          cat,
		minter:           catalog.NewMinter(cat),
		rng:              rng,
		arena:            newArena(),
		players:          make([]*playerState, 0, 2),
		revealed:         make(map[string][NumSlots]int),
		newRoundRequests: make(map[string]bool),
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// JoinResult describes what a join did.
type JoinResult struct {
	Reconnected bool
	Started     bool // both players present as of this join
	OpponentID  string
}

// Join registers a new player or reconnects a known one. A third distinct
// id is rejected with ErrSessionFull. Reconnection is unconditional and
// never disturbs game state.
func (s *Session) Join(playerID string) (JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.player(playerID); p != nil {
		p.connected = true
		s.logger.Info("player reconnected",
			zap.String("session_id", s.id),
			zap.String("player_id", playerID),
		)
		return JoinResult{Reconnected: true, OpponentID: s.opponentIDOf(playerID)}, nil
	}

	if len(s.players) >= 2 {
		return JoinResult{}, ErrSessionFull
	}

	s.players = append(s.players, newPlayerState(playerID))
	s.logger.Info("player joined",
		zap.String("session_id", s.id),
		zap.String("player_id", playerID),
	)

	res := JoinResult{OpponentID: s.opponentIDOf(playerID)}
	if len(s.players) == 2 {
		if err := s.startGame(); err != nil {
			return JoinResult{}, err
		}
		res.Started = true
	}
	return res, nil
}

// startGame deals opening hands and flips for the first mover.
// Caller holds the lock.
func (s *Session) startGame() error {
	for _, p := range s.players {
		if err := s.dealOpeningHand(p); err != nil {
			return err
		}
	}

	firstMover := s.players[s.rng.Intn(2)]
	s.controller = rules.NewController(s.opponentOf(firstMover).id)
	s.started = true

	s.logger.Info("game started",
		zap.String("session_id", s.id),
		zap.String("first_mover", firstMover.id),
	)
	return nil
}

// dealOpeningHand mints one squirrel plus the random draws into a hand.
// Caller holds the lock.
func (s *Session) dealOpeningHand(p *playerState) error {
	inst, err := s.minter.Mint(catalog.SquirrelName, p.id)
	if err != nil {
		return err
	}
	s.arena.add(inst)
	p.hand = append(p.hand, inst.ID)

	for i := 0; i < startingRandomDraws; i++ {
		inst, err := s.minter.MintAt(s.rng.Intn(s.catalog.Len()), p.id)
		if err != nil {
			return err
		}
		s.arena.add(inst)
		p.hand = append(p.hand, inst.ID)
	}
	return nil
}

// PlacementUpdate applies an incremental stage or clear before a commit.
// Illegal attempts leave the session untouched.
func (s *Session) PlacementUpdate(playerID string, cardID, slot int, action PlacementAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.actingPlayer(playerID)
	if err != nil {
		return err
	}

	switch action {
	case PlacementAdd:
		return s.stageCard(p, cardID, slot)
	case PlacementClear:
		return s.clearCard(p, cardID)
	default:
		return fmt.Errorf("%w: placement action %q", ErrIllegalPhaseAction, action)
	}
}

// stageCard moves a hand card into a slot, paying its cost up front.
// Caller holds the lock.
func (s *Session) stageCard(p *playerState, cardID, slot int) error {
	if slot < 0 || slot >= NumSlots {
		return fmt.Errorf("%w: %d", ErrSlotIndexOutOfRange, slot)
	}
	if p.slots[slot] != 0 {
		return fmt.Errorf("%w: slot %d", ErrSlotOccupied, slot)
	}

	card, ok := s.arena.get(cardID)
	if !ok || card.OwnerID != p.id {
		return fmt.Errorf("%w: %d", ErrUnknownCard, cardID)
	}
	if card.State != StateInHand {
		return fmt.Errorf("%w: card %d is %s", ErrIllegalPhaseAction, cardID, card.State)
	}

	if err := s.payCost(p, card); err != nil {
		return err
	}

	card.State = StateStaged
	p.removeFromHand(cardID)
	p.slots[slot] = cardID

	s.logger.Debug("card staged",
		zap.String("session_id", s.id),
		zap.String("player_id", p.id),
		zap.Int("card_id", cardID),
		zap.String("card", card.Template.Name),
		zap.Int("slot", slot),
	)
	return nil
}

// payCost deducts a card's cost, ledger first. Free cards pay nothing.
// Caller holds the lock.
func (s *Session) payCost(p *playerState, card *Card) error {
	total := card.Template.TotalCost()
	if total == 0 {
		return nil
	}
	payment, ok := p.pool.Pay(total)
	if !ok {
		return fmt.Errorf("%w: %s costs %d, have %d",
			ErrInsufficientResource, card.Template.Name, total, p.pool.Total())
	}
	card.payment = payment
	card.paid = true
	return nil
}

// clearCard un-stages a card. A card staged this turn is refunded back to
// hand; an active creature is offered as a sacrifice, crediting the
// ledger and leaving play for good. Caller holds the lock.
func (s *Session) clearCard(p *playerState, cardID int) error {
	card, ok := s.arena.get(cardID)
	if !ok || card.OwnerID != p.id {
		return fmt.Errorf("%w: %d", ErrUnknownCard, cardID)
	}

	switch card.State {
	case StateStaged:
		if card.paid {
			p.pool.Refund(card.payment)
			card.paid = false
		}
		p.clearSlot(cardID)
		card.State = StateInHand
		p.hand = append(p.hand, cardID)
		s.logger.Debug("placement cancelled",
			zap.String("session_id", s.id),
			zap.String("player_id", p.id),
			zap.Int("card_id", cardID),
		)
		return nil

	case StateActive:
		p.clearSlot(cardID)
		s.arena.drop(cardID)
		p.pool.AddSacrifice()
		s.logger.Debug("creature sacrificed",
			zap.String("session_id", s.id),
			zap.String("player_id", p.id),
			zap.Int("card_id", cardID),
			zap.Int("ledger", p.pool.Sacrifices()),
		)
		return nil

	default:
		return fmt.Errorf("%w: card %d is %s", ErrIllegalPhaseAction, cardID, card.State)
	}
}

// Resolution is what a round-closing commit produced.
type Resolution struct {
	Round          int
	MoverID        string
	OpponentID     string
	MoverDeaths    []int
	OpponentDeaths []int
	Vitality       int // absolute track value after the round
	Winner         string
	GameOver       bool
}

// CommitResult describes the effect of a commit.
type CommitResult struct {
	// FirstOfRound is true when the commit only locked a snapshot and the
	// opponent still has to move.
	FirstOfRound bool
	// Resolution is set when this commit closed the round.
	Resolution *Resolution
	// BonusChooser names the player owed a bonus draw, when a round closed
	// without ending the game.
	BonusChooser string
}

// Commit finalizes a player's placement for the round. The declared slots
// are authoritative for arrangement: hand cards are staged implicitly when
// payable, staged cards missing from the declaration are refunded back to
// hand. The second commit of a round triggers combat resolution.
func (s *Session) Commit(playerID string, declared [NumSlots][]int) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.actingPlayer(playerID)
	if err != nil {
		return CommitResult{}, err
	}

	if err := s.reconcileSlots(p, declared); err != nil {
		return CommitResult{}, err
	}

	// Lock everything placed onto the field.
	for _, id := range p.slots {
		if id == 0 {
			continue
		}
		if card, ok := s.arena.get(id); ok && card.State == StateStaged {
			card.State = StateActive
			card.paid = false // payment is final once locked
		}
	}

	if s.controller.Phase() == rules.PhaseAwaitingFirstCommit {
		if err := s.controller.RecordFirstCommit(playerID); err != nil {
			return CommitResult{}, fmt.Errorf("%w: %v", ErrIllegalPhaseAction, err)
		}
		s.locked = boardFromSlots(s.arena, p.slots)
		s.lockedBy = playerID
		s.logger.Info("first commit locked",
			zap.String("session_id", s.id),
			zap.String("player_id", playerID),
			zap.Int("round", s.controller.Round()),
		)
		return CommitResult{FirstOfRound: true}, nil
	}

	if err := s.controller.RecordSecondCommit(playerID); err != nil {
		return CommitResult{}, fmt.Errorf("%w: %v", ErrIllegalPhaseAction, err)
	}

	resolution := s.resolveRound(p)

	if resolution.GameOver {
		s.controller.SetGameOver(resolution.Winner)
		return CommitResult{Resolution: resolution}, nil
	}
	return CommitResult{
		Resolution:   resolution,
		BonusChooser: s.controller.BonusChooser(),
	}, nil
}

// reconcileSlots makes the declared arrangement the player's battlefield.
// Caller holds the lock.
func (s *Session) reconcileSlots(p *playerState, declared [NumSlots][]int) error {
	var next [NumSlots]int
	placed := make(map[int]bool, NumSlots)

	for i, ids := range declared {
		if len(ids) == 0 {
			continue
		}
		// A slot holds at most one creature; extra ids are a client bug.
		if len(ids) > 1 {
			s.logger.Warn("multiple ids declared for one slot, keeping first",
				zap.String("session_id", s.id),
				zap.String("player_id", p.id),
				zap.Int("slot", i),
			)
		}
		id := ids[0]

		// One creature, one slot. A repeated id keeps only its first slot.
		if placed[id] {
			s.logger.Warn("card declared in multiple slots, keeping first",
				zap.String("session_id", s.id),
				zap.String("player_id", p.id),
				zap.Int("card_id", id),
				zap.Int("slot", i),
			)
			continue
		}

		card, ok := s.arena.get(id)
		if !ok || card.OwnerID != p.id {
			s.logger.Warn("declared card not found, skipping",
				zap.String("session_id", s.id),
				zap.String("player_id", p.id),
				zap.Int("card_id", id),
			)
			continue
		}

		switch card.State {
		case StateActive, StateStaged:
			next[i] = id
			placed[id] = true
		case StateInHand:
			// Implicit staging at commit time. Costed cards must still be
			// payable; otherwise the card stays in hand.
			if err := s.payCost(p, card); err != nil {
				s.logger.Warn("placement rejected",
					zap.String("session_id", s.id),
					zap.String("player_id", p.id),
					zap.String("card", card.Template.Name),
					zap.Error(err),
				)
				continue
			}
			card.State = StateStaged
			p.removeFromHand(id)
			next[i] = id
			placed[id] = true
		}
	}

	// Staged cards missing from the declaration are cancelled placements.
	for _, id := range p.slots {
		if id == 0 || containsID(next, id) {
			continue
		}
		if card, ok := s.arena.get(id); ok && card.State == StateStaged {
			if card.paid {
				p.pool.Refund(card.payment)
				card.paid = false
			}
			card.State = StateInHand
			p.hand = append(p.hand, id)
		}
	}

	p.slots = next
	return nil
}

// resolveRound runs combat for the round the mover just closed and applies
// the result. Caller holds the lock.
func (s *Session) resolveRound(mover *playerState) *Resolution {
	opponent := s.opponentOf(mover)

	moverBoard := boardFromSlots(s.arena, mover.slots)

	// The resolver is mover-relative; the session track presses the
	// first-seated player when positive.
	moverRelative := s.vitality
	if mover != s.players[0] {
		moverRelative = -moverRelative
	}

	result := ResolveCombat(moverBoard, s.locked, moverRelative)

	s.applyBoard(mover, result.Mover, result.MoverDeaths, result.MoverBones)
	s.applyBoard(opponent, result.Opponent, result.OpponentDeaths, result.OpponentBones)

	if mover == s.players[0] {
		s.vitality = result.Vitality
	} else {
		s.vitality = -result.Vitality
	}

	// Turn boundary: both ledgers reset, unspent value is lost.
	mover.pool.ResetSacrifices()
	opponent.pool.ResetSacrifices()

	// Both boards are now public until the next round's commits.
	s.revealed[mover.id] = mover.slots
	s.revealed[opponent.id] = opponent.slots
	s.locked = Board{}
	s.lockedBy = ""

	resolution := &Resolution{
		Round:          s.controller.Round(),
		MoverID:        mover.id,
		OpponentID:     opponent.id,
		MoverDeaths:    result.MoverDeaths,
		OpponentDeaths: result.OpponentDeaths,
		Vitality:       s.vitality,
	}

	switch result.Outcome {
	case OutcomeMoverWins:
		resolution.GameOver = true
		resolution.Winner = mover.id
	case OutcomeMoverLoses:
		resolution.GameOver = true
		resolution.Winner = opponent.id
	}

	s.logger.Info("round resolved",
		zap.String("session_id", s.id),
		zap.Int("round", resolution.Round),
		zap.String("mover", mover.id),
		zap.Int("vitality", s.vitality),
		zap.Int("mover_deaths", len(result.MoverDeaths)),
		zap.Int("opponent_deaths", len(result.OpponentDeaths)),
		zap.String("outcome", result.Outcome.String()),
	)
	return resolution
}

// applyBoard folds a resolved board back into a player's state: HP
// updates, deaths, and the bone payout. Caller holds the lock.
func (s *Session) applyBoard(p *playerState, board Board, deaths []int, bones int) {
	for _, creature := range board {
		if creature == nil {
			continue
		}
		if card, ok := s.arena.get(creature.ID); ok {
			card.HP = creature.HP
		}
	}
	for _, id := range deaths {
		p.clearSlot(id)
		p.removeFromHand(id)
		s.arena.drop(id)
	}
	p.pool.AddBones(bones)
}

// BonusChoice resolves a pending bonus draw and opens the next round.
// Unknown kinds fall back to the starter creature.
func (s *Session) BonusChoice(playerID string, kind BonusKind) (*Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.player(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if !p.connected {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotConnected, playerID)
	}
	if !s.started || s.controller == nil {
		return nil, fmt.Errorf("%w: game not started", ErrIllegalPhaseAction)
	}

	if err := s.controller.ResolveBonus(playerID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalPhaseAction, err)
	}

	var (
		inst *catalog.Instance
		err  error
	)
	switch kind {
	case BonusCreations:
		inst, err = s.minter.MintAt(s.rng.Intn(s.catalog.Len()), playerID)
	case BonusSquirrels:
		inst, err = s.minter.Mint(catalog.SquirrelName, playerID)
	default:
		s.logger.Warn("unknown bonus kind, minting starter",
			zap.String("session_id", s.id),
			zap.String("player_id", playerID),
			zap.String("kind", string(kind)),
		)
		inst, err = s.minter.Mint(catalog.SquirrelName, playerID)
	}
	if err != nil {
		return nil, err
	}

	card := s.arena.add(inst)
	p.hand = append(p.hand, inst.ID)

	s.logger.Info("bonus draw resolved",
		zap.String("session_id", s.id),
		zap.String("player_id", playerID),
		zap.String("card", card.Template.Name),
	)
	return card, nil
}

// RequestNewRound records a fresh-session request. The session resets once
// both players have asked. Returns true when the reset happened.
func (s *Session) RequestNewRound(playerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player(playerID) == nil {
		return false, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}

	s.newRoundRequests[playerID] = true
	if len(s.newRoundRequests) < 2 {
		s.logger.Info("new round requested, waiting for opponent",
			zap.String("session_id", s.id),
			zap.String("player_id", playerID),
		)
		return false, nil
	}

	s.newRoundRequests = make(map[string]bool)
	s.resetGame()
	return true, nil
}

// resetGame wipes board state and deals a fresh game for the same two
// players. Instance ids keep counting up; they are never reused within a
// session. Caller holds the lock.
func (s *Session) resetGame() {
	s.arena = newArena()
	s.vitality = 0
	s.locked = Board{}
	s.lockedBy = ""
	s.revealed = make(map[string][NumSlots]int)

	for i, p := range s.players {
		fresh := newPlayerState(p.id)
		fresh.connected = p.connected
		s.players[i] = fresh
	}

	if err := s.startGame(); err != nil {
		// Mint failures here would mean a broken catalog; keep the session
		// alive and let the next action surface the problem.
		s.logger.Error("failed to restart game", zap.Error(err))
	}

	s.logger.Info("fresh game started", zap.String("session_id", s.id))
}

// SetConnected flips a player's connection status. Disconnection never
// rolls back state; gameplay data survives for reconnection.
func (s *Session) SetConnected(playerID string, connected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.player(playerID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	p.connected = connected
	return nil
}

// OpponentID returns the other player's id, or "".
func (s *Session) OpponentID(playerID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opponentIDOf(playerID)
}

// actingPlayer validates that playerID may mutate placement state right
// now. Caller holds the lock.
func (s *Session) actingPlayer(playerID string) (*playerState, error) {
	p := s.player(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if !p.connected {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotConnected, playerID)
	}
	if !s.started || s.controller == nil {
		return nil, fmt.Errorf("%w: game not started", ErrIllegalPhaseAction)
	}
	if !s.controller.CanAct(playerID) {
		return nil, fmt.Errorf("%w: %s may not act in %s",
			ErrIllegalPhaseAction, playerID, s.controller.Phase())
	}
	return p, nil
}

func (s *Session) player(playerID string) *playerState {
	for _, p := range s.players {
		if p.id == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) opponentOf(p *playerState) *playerState {
	for _, other := range s.players {
		if other != p {
			return other
		}
	}
	return nil
}

func (s *Session) opponentIDOf(playerID string) string {
	for _, p := range s.players {
		if p.id != playerID {
			return p.id
		}
	}
	return ""
}

func containsID(slots [NumSlots]int, id int) bool {
	for _, v := range slots {
		if v == id {
			return true
		}
	}
	return false
}
