package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cabingames/duel-server-go/internal/game"
)

// MatchArchive records finished duels. A nil archive disables recording;
// live session state never touches it.
type MatchArchive interface {
	RecordResult(ctx context.Context, sessionID, winnerID, loserID string, rounds, vitality int) error
}

// PlayerRef is a minimal payload naming one player.
type PlayerRef struct {
	PlayerID string `json:"player_id"`
}

// Gateway owns the websocket side of one duel session: connection
// registry, frame decoding, and the periodic snapshot broadcast. All
// gameplay decisions live in the session; the gateway only translates.
type Gateway struct {
	logger   *zap.Logger
	session  *game.Session
	archive  MatchArchive
	interval time.Duration

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	clients  map[*client]bool
	byPlayer map[string]*client

	register   chan *client
	unregister chan *client

	// done is closed when Run returns, releasing read pumps that would
	// otherwise block handing their connection back.
	done chan struct{}
}

// NewGateway wraps a session. archive may be nil.
func NewGateway(session *game.Session, archive MatchArchive, interval time.Duration, logger *zap.Logger) *Gateway {
	return &Gateway{
		logger:   logger,
		session:  session,
		archive:  archive,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Players connect from arbitrary origins; there is no cookie
			// auth to protect, identity is the joined player id.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*client]bool),
		byPlayer:   make(map[string]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Handler returns the HTTP handler exposing the websocket endpoint.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.serveWS)
	return mux
}

func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(g, conn)
	select {
	case g.register <- c:
	case <-g.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Run drives the connection registry and the snapshot ticker until ctx is
// cancelled.
func (g *Gateway) Run(ctx context.Context) {
	defer close(g.done)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case c := <-g.register:
			g.mu.Lock()
			g.clients[c] = true
			g.mu.Unlock()

		case c := <-g.unregister:
			g.dropClient(c)

		case <-ticker.C:
			g.broadcastState()

		case <-ctx.Done():
			g.closeAll()
			return
		}
	}
}

// dropClient removes a dead connection. The seat only counts as vacated
// when this client is still the one bound to its player id; a reconnect
// that already rebound the id leaves gameplay state alone.
func (g *Gateway) dropClient(c *client) {
	g.mu.Lock()
	if !g.clients[c] {
		g.mu.Unlock()
		return
	}
	delete(g.clients, c)
	c.closeSend()

	vacated := c.playerID != "" && g.byPlayer[c.playerID] == c
	if vacated {
		delete(g.byPlayer, c.playerID)
	}
	g.mu.Unlock()

	if !vacated {
		return
	}

	if err := g.session.SetConnected(c.playerID, false); err != nil {
		g.logger.Warn("failed to mark player disconnected",
			zap.String("player_id", c.playerID),
			zap.Error(err),
		)
		return
	}
	g.logger.Info("player disconnected", zap.String("player_id", c.playerID))

	if opp := g.session.OpponentID(c.playerID); opp != "" {
		g.sendToPlayer(opp, MsgOpponentDisconnected, PlayerRef{PlayerID: c.playerID})
	}
}

func (g *Gateway) closeAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for c := range g.clients {
		c.closeSend()
		delete(g.clients, c)
	}
	g.byPlayer = make(map[string]*client)
}

// handleMessage dispatches one decoded frame. Runs on the sender's read
// pump; the session serializes the actual mutations.
func (g *Gateway) handleMessage(c *client, msg ClientMessage) {
	if msg.Type != MsgPlayerJoin && c.playerID == "" {
		g.logger.Warn("frame before player_join dropped", zap.String("type", msg.Type))
		return
	}

	switch msg.Type {
	case MsgPlayerJoin:
		g.handleJoin(c, msg.PlayerID)

	case MsgCardPlacementUpdate:
		err := g.session.PlacementUpdate(c.playerID, msg.CardID, msg.Slot, game.PlacementAction(msg.Action))
		if err != nil {
			g.logger.Info("placement update rejected",
				zap.String("player_id", c.playerID),
				zap.Error(err),
			)
			return
		}
		g.sendView(c.playerID, MsgMoveAccepted)

	case MsgPlayerAction:
		g.handleCommit(c, msg.Slots)

	case MsgSpecialAction:
		g.handleSpecialAction(c, msg.ActionType)

	case MsgStartNewRound:
		g.handleNewRound(c)

	default:
		g.logger.Warn("unknown message type",
			zap.String("player_id", c.playerID),
			zap.String("type", msg.Type),
		)
	}
}

func (g *Gateway) handleJoin(c *client, playerID string) {
	if playerID == "" {
		g.logger.Warn("player_join without player_id")
		return
	}

	res, err := g.session.Join(playerID)
	if err != nil {
		if errors.Is(err, game.ErrSessionFull) {
			g.send(c, MsgGameFull, nil)
			return
		}
		g.logger.Error("join failed", zap.String("player_id", playerID), zap.Error(err))
		return
	}

	g.mu.Lock()
	c.playerID = playerID
	g.byPlayer[playerID] = c
	g.mu.Unlock()

	switch {
	case res.Reconnected:
		g.sendHand(playerID)
		g.sendView(playerID, MsgGameState)
		if res.OpponentID != "" {
			g.sendToPlayer(res.OpponentID, MsgOpponentReconnected, PlayerRef{PlayerID: playerID})
		}

	case res.Started:
		for _, pid := range []string{playerID, res.OpponentID} {
			g.sendToPlayer(pid, MsgGameStart, PlayerRef{PlayerID: pid})
			g.sendHand(pid)
		}

	default:
		g.send(c, MsgWaitingForOpponent, nil)
	}
}

func (g *Gateway) handleCommit(c *client, slots [game.NumSlots][]int) {
	res, err := g.session.Commit(c.playerID, slots)
	if err != nil {
		g.logger.Info("commit rejected",
			zap.String("player_id", c.playerID),
			zap.Error(err),
		)
		return
	}

	if res.FirstOfRound {
		g.sendView(c.playerID, MsgMoveAccepted)
		g.send(c, MsgWaitingForOpponent, nil)
		return
	}

	g.announceResolution(res)
}

// announceResolution pushes the round outcome to both players: each gets
// the opponent's revealed battlefield plus a fresh snapshot, and the
// pending chooser is asked for their bonus draw.
func (g *Gateway) announceResolution(res game.CommitResult) {
	r := res.Resolution

	for _, pid := range []string{r.MoverID, r.OpponentID} {
		view, err := g.session.View(pid)
		if err != nil {
			g.logger.Error("view failed", zap.String("player_id", pid), zap.Error(err))
			continue
		}

		payload := MovePayload{
			Round:    r.Round,
			MoverID:  r.MoverID,
			Vitality: view.Vitality,
			Winner:   r.Winner,
			GameOver: r.GameOver,
		}
		if view.Opponent != nil {
			payload.Slots = view.Opponent.Slots
		}
		if pid == r.MoverID {
			payload.MoverDeaths = r.MoverDeaths
			payload.OpponentDeaths = r.OpponentDeaths
		} else {
			payload.MoverDeaths = r.OpponentDeaths
			payload.OpponentDeaths = r.MoverDeaths
		}

		g.sendToPlayer(pid, MsgOpponentMove, payload)
		g.sendToPlayer(pid, MsgGameState, view)
	}

	if res.BonusChooser != "" {
		g.sendToPlayer(res.BonusChooser, MsgSpecialActionRequest, nil)
	}

	if r.GameOver {
		g.recordResult(r)
	}
}

func (g *Gateway) recordResult(r *game.Resolution) {
	if g.archive == nil {
		return
	}
	loser := r.MoverID
	if loser == r.Winner {
		loser = r.OpponentID
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.archive.RecordResult(ctx, g.session.ID(), r.Winner, loser, r.Round, r.Vitality); err != nil {
			g.logger.Error("failed to archive match result",
				zap.String("session_id", g.session.ID()),
				zap.Error(err),
			)
		}
	}()
}

func (g *Gateway) handleSpecialAction(c *client, actionType string) {
	card, err := g.session.BonusChoice(c.playerID, game.BonusKind(actionType))
	if err != nil {
		g.logger.Info("bonus choice rejected",
			zap.String("player_id", c.playerID),
			zap.Error(err),
		)
		return
	}
	g.logger.Info("bonus card minted",
		zap.String("player_id", c.playerID),
		zap.String("card", card.Template.Name),
	)

	g.sendHand(c.playerID)
	g.sendView(c.playerID, MsgGameState)
	if opp := g.session.OpponentID(c.playerID); opp != "" {
		g.sendView(opp, MsgGameState)
	}
}

func (g *Gateway) handleNewRound(c *client) {
	reset, err := g.session.RequestNewRound(c.playerID)
	if err != nil {
		g.logger.Info("new round request rejected",
			zap.String("player_id", c.playerID),
			zap.Error(err),
		)
		return
	}

	if !reset {
		g.send(c, MsgWaitingForOpponent, nil)
		return
	}

	g.mu.RLock()
	pids := make([]string, 0, len(g.byPlayer))
	for pid := range g.byPlayer {
		pids = append(pids, pid)
	}
	g.mu.RUnlock()

	for _, pid := range pids {
		g.sendToPlayer(pid, MsgGameStart, PlayerRef{PlayerID: pid})
		g.sendHand(pid)
	}
}

// broadcastState pushes a per-player snapshot to every bound connection.
func (g *Gateway) broadcastState() {
	g.mu.RLock()
	pids := make([]string, 0, len(g.byPlayer))
	for pid := range g.byPlayer {
		pids = append(pids, pid)
	}
	g.mu.RUnlock()

	for _, pid := range pids {
		g.sendView(pid, MsgGameState)
	}
}

func (g *Gateway) sendView(playerID, msgType string) {
	view, err := g.session.View(playerID)
	if err != nil {
		g.logger.Error("view failed", zap.String("player_id", playerID), zap.Error(err))
		return
	}
	g.sendToPlayer(playerID, msgType, view)
}

func (g *Gateway) sendHand(playerID string) {
	hand, err := g.session.Hand(playerID)
	if err != nil {
		g.logger.Error("hand lookup failed", zap.String("player_id", playerID), zap.Error(err))
		return
	}
	g.sendToPlayer(playerID, MsgNumbersAssigned, HandAssignment{PlayerID: playerID, Cards: hand})
}

func (g *Gateway) sendToPlayer(playerID, msgType string, data any) {
	g.mu.RLock()
	c := g.byPlayer[playerID]
	g.mu.RUnlock()
	if c == nil {
		return
	}
	g.send(c, msgType, data)
}

func (g *Gateway) send(c *client, msgType string, data any) {
	frame, err := json.Marshal(ServerMessage{Type: msgType, Data: data})
	if err != nil {
		g.logger.Error("failed to encode frame", zap.String("type", msgType), zap.Error(err))
		return
	}
	c.enqueue(frame)
}
