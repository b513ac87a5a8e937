package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"waterbarons/internal/engine"
	"waterbarons/internal/engine/hazards"
	"waterbarons/internal/lobby"
	"waterbarons/internal/protocol"
)

// msgDisconnect is forwarded to a running table when a player's last
// connection drops. Clients never send it.
const msgDisconnect = "disconnect"

// Hub manages WebSocket connections for one table. Lobby messages are
// handled here; game messages are forwarded to the table's game goroutine.
type Hub struct {
	mu         sync.Mutex
	tableID    string
	lobby      *lobby.Lobby
	deps       TableDeps
	table      *Table
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
	closeOnce  sync.Once
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewHub(tableID string, lob *lobby.Lobby, deps TableDeps) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		tableID:    tableID,
		lobby:      lob,
		deps:       deps,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		quit:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.sendLobbyUpdate()
			if t := h.Table(); t != nil {
				t.resend(client)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.handleDisconnect(client)

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Close stops the hub and cancels the running game. Pending decisions fall
// back to their defaults.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.cancel()
		close(h.quit)
	})
}

// Table returns the running table, or nil before the game starts.
func (h *Hub) Table() *Table {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.table
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	switch msg.Envelope.Type {
	case protocol.MsgJoin:
		h.handleJoin(msg)
	case protocol.MsgReady:
		h.handleReady(msg)
	case protocol.MsgStartGame:
		h.handleStartGame(msg)
	case msgDisconnect:
		// only the hub may raise disconnects
	default:
		h.handleGameAction(msg)
	}
}

func (h *Hub) handleJoin(msg IncomingMessage) {
	var join protocol.JoinMsg
	if err := msg.Envelope.Decode(&join); err != nil || join.PlayerID == "" {
		h.sendError(msg.Client, "invalid join message")
		return
	}
	if err := h.lobby.Join(join.PlayerID, join.Name); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}
	h.mu.Lock()
	msg.Client.PlayerID = join.PlayerID
	msg.Client.Type = ClientPlayer
	h.mu.Unlock()
	slog.Info("player joined", "table", h.tableID, "player", join.PlayerID, "name", join.Name)
	h.sendLobbyUpdate()
	if t := h.Table(); t != nil {
		t.resend(msg.Client)
	}
}

func (h *Hub) handleReady(msg IncomingMessage) {
	var ready protocol.ReadyMsg
	if err := msg.Envelope.Decode(&ready); err != nil {
		h.sendError(msg.Client, "invalid ready message")
		return
	}
	h.lobby.SetReady(msg.Client.PlayerID, ready.Ready)
	h.sendLobbyUpdate()
}

func (h *Hub) handleStartGame(msg IncomingMessage) {
	if err := h.lobby.Start(); err != nil {
		h.sendError(msg.Client, err.Error())
		return
	}

	lobbyPlayers := h.lobby.GetPlayers()
	players := make([]*engine.Player, len(lobbyPlayers))
	for i, lp := range lobbyPlayers {
		players[i] = engine.NewPlayer(lp.ID, lp.Name)
	}
	g := engine.NewGame(players, h.deps.Catalog.GameConfig(h.deps.Seed), hazards.NewRegistry())
	h.startTable(g)
	slog.Info("game started", "table", h.tableID, "game", g.ID, "players", len(players))
}

// Resume seats the players of a restored game and runs it from its next
// round. The lobby must be empty.
func (h *Hub) Resume(g *engine.Game) error {
	seats := make([]lobby.PlayerInfo, len(g.Players))
	for i, p := range g.Players {
		seats[i] = lobby.PlayerInfo{ID: p.ID, Name: p.Name}
	}
	if err := h.lobby.Seat(seats); err != nil {
		return err
	}
	h.startTable(g)
	slog.Info("game resumed", "table", h.tableID, "game", g.ID, "round", g.Round)
	return nil
}

func (h *Hub) startTable(g *engine.Game) {
	t := NewTable(g, h, h.deps)

	h.mu.Lock()
	h.table = t
	h.mu.Unlock()

	h.sendLobbyUpdate()
	go t.Run(h.ctx)
}

func (h *Hub) handleGameAction(msg IncomingMessage) {
	t := h.Table()
	if t == nil {
		h.sendError(msg.Client, "game not started")
		return
	}
	if msg.Client.Type != ClientPlayer || !h.lobby.Has(msg.Client.PlayerID) {
		h.sendError(msg.Client, "not seated at this table")
		return
	}
	msg.PlayerID = msg.Client.PlayerID
	if err := t.Deliver(msg); err != nil {
		h.sendError(msg.Client, err.Error())
	}
}

func (h *Hub) handleDisconnect(client *Client) {
	t := h.Table()
	if t == nil || client.PlayerID == "" {
		return
	}
	if h.connected(client.PlayerID) {
		return
	}
	if err := t.Deliver(IncomingMessage{Client: client, PlayerID: client.PlayerID, Envelope: protocol.Envelope{Type: msgDisconnect}}); err != nil {
		slog.Warn("disconnect not delivered", "table", h.tableID, "player", client.PlayerID, "err", err)
	}
}

// connected reports whether playerID has a live player connection.
func (h *Hub) connected(playerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.Type == ClientPlayer && c.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (h *Hub) sendLobbyUpdate() {
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgLobbyUpdate, h.lobbyUpdate()))
}

func (h *Hub) lobbyUpdate() protocol.LobbyUpdate {
	players := h.lobby.GetPlayers()
	lps := make([]protocol.LobbyPlayer, len(players))
	for i, p := range players {
		lps[i] = protocol.LobbyPlayer{ID: p.ID, Name: p.Name, Ready: p.Ready}
	}
	return protocol.LobbyUpdate{
		TableID: h.tableID,
		Players: lps,
		Started: h.lobby.IsStarted(),
	}
}

func (h *Hub) broadcastAll(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("broadcast marshal error", "table", h.tableID, "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.enqueue(data)
	}
}

// broadcastViews sends every client its own view of the game.
func (h *Hub) broadcastViews(view func(*Client) protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.sendLocked(client, view(client))
	}
}

// sendToPlayer sends env to every connection of playerID.
func (h *Hub) sendToPlayer(playerID string, env protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.Type == ClientPlayer && client.PlayerID == playerID {
			h.sendLocked(client, env)
		}
	}
}

// send delivers env to client if it is still connected.
func (h *Hub) send(client *Client, env protocol.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sendLocked(client, env)
}

func (h *Hub) sendLocked(client *Client, env protocol.Envelope) {
	if !h.clients[client] {
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("marshal error", "table", h.tableID, "type", env.Type, "err", err)
		return
	}
	client.enqueue(data)
}

func (h *Hub) sendError(client *Client, message string) {
	h.send(client, protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Message: message}))
}
