package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"waterbarons/internal/engine"
	"waterbarons/internal/engine/hazards"
	"waterbarons/internal/lobby"
	qr "waterbarons/internal/qrcode"
	"waterbarons/internal/storage"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	mu       sync.Mutex
	LobbyMgr *lobby.Manager
	hubs     map[string]*Hub
	deps     TableDeps
}

func NewHandlers(maxPlayers int, deps TableDeps) *Handlers {
	return &Handlers{
		LobbyMgr: lobby.NewManager(maxPlayers),
		hubs:     make(map[string]*Hub),
		deps:     deps,
	}
}

// CreateResponse is returned by HandleCreateGame.
type CreateResponse struct {
	TableID string `json:"table_id"`
	JoinURL string `json:"join_url"`
}

// HandleCreateGame opens a new table.
func (h *Handlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "use POST", http.StatusMethodNotAllowed)
		return
	}
	tableID := h.LobbyMgr.Create()
	hub := NewHub(tableID, h.LobbyMgr.Get(tableID), h.deps)

	h.mu.Lock()
	h.hubs[tableID] = hub
	h.mu.Unlock()
	go hub.Run()

	slog.Info("table created", "table", tableID)
	writeJSON(w, http.StatusCreated, CreateResponse{TableID: tableID, JoinURL: qr.JoinURL(r.Host, tableID)})
}

// ResumeResponse is returned by HandleResume.
type ResumeResponse struct {
	CreateResponse
	GameID string `json:"game_id"`
	Round  int    `json:"round"`
}

// HandleResume restores a saved game onto a new table. Its players rejoin
// with their old IDs.
func (h *Handlers) HandleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "use POST", http.StatusMethodNotAllowed)
		return
	}
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game parameter", http.StatusBadRequest)
		return
	}
	if h.deps.Store == nil {
		http.Error(w, "no storage configured", http.StatusNotFound)
		return
	}
	if h.running(gameID) {
		http.Error(w, "game is already running", http.StatusConflict)
		return
	}

	snap, err := h.deps.Store.LoadSnapshot(r.Context(), gameID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("load game failed", "game", gameID, "err", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	g, err := engine.Restore(snap, h.deps.Catalog.GameConfig(snap.Seed), hazards.NewRegistry())
	if err != nil {
		slog.Error("restore game failed", "game", gameID, "err", err)
		http.Error(w, "saved game is unreadable", http.StatusInternalServerError)
		return
	}
	if g.Phase == engine.PhaseGameOver || g.Uninhabitable {
		http.Error(w, "game is over", http.StatusConflict)
		return
	}

	tableID := h.LobbyMgr.Create()
	hub := NewHub(tableID, h.LobbyMgr.Get(tableID), h.deps)
	if err := hub.Resume(g); err != nil {
		h.LobbyMgr.Remove(tableID)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	h.hubs[tableID] = hub
	h.mu.Unlock()
	go hub.Run()

	writeJSON(w, http.StatusCreated, ResumeResponse{
		CreateResponse: CreateResponse{TableID: tableID, JoinURL: qr.JoinURL(r.Host, tableID)},
		GameID:         g.ID,
		Round:          g.Round,
	})
}

// HandleQR generates a QR code PNG for joining the table.
func (h *Handlers) HandleQR(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("table")
	if tableID == "" {
		http.Error(w, "missing table parameter", http.StatusBadRequest)
		return
	}
	if h.hub(tableID) == nil {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}
	png, err := qr.JoinPNG(r.Host, tableID)
	if err != nil {
		slog.Error("qr generation failed", "table", tableID, "err", err)
		http.Error(w, "QR generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// HandleState returns the public view of a running game, or the lobby.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	hub := h.hub(r.URL.Query().Get("table"))
	if hub == nil {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}
	if t := hub.Table(); t != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(t.PublicState().Payload)
		return
	}
	writeJSON(w, http.StatusOK, hub.lobbyUpdate())
}

// HandleWS handles WebSocket connections.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tableID := q.Get("table")
	if tableID == "" {
		http.Error(w, "missing table parameter", http.StatusBadRequest)
		return
	}
	hub := h.hub(tableID)
	if hub == nil {
		http.Error(w, "table not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade error", "table", tableID, "err", err)
		return
	}

	client := NewClient(hub, conn, q.Get("player"), ParseClientType(q.Get("type")))
	select {
	case hub.register <- client:
	case <-hub.quit:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// HandlePlayerID returns a new player ID.
func (h *Handlers) HandlePlayerID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(GeneratePlayerID()))
}

// HandleGames lists stored games.
func (h *Handlers) HandleGames(w http.ResponseWriter, r *http.Request) {
	if h.deps.Store == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	games, err := h.deps.Store.ListGames(r.Context())
	if err != nil {
		slog.Error("list games failed", "err", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleHistory returns the stored audit log of a game.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game parameter", http.StatusBadRequest)
		return
	}
	if h.deps.Store == nil {
		http.Error(w, "no storage configured", http.StatusNotFound)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := h.deps.Store.AuditLog(r.Context(), gameID, limit)
	if err != nil {
		slog.Error("audit log failed", "game", gameID, "err", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// CloseAll stops every hub.
func (h *Handlers) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, hub := range h.hubs {
		hub.Close()
		h.LobbyMgr.Remove(id)
		delete(h.hubs, id)
	}
}

// running reports whether a live table is playing gameID.
func (h *Handlers) running(gameID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, hub := range h.hubs {
		if t := hub.Table(); t != nil && t.ID == gameID && !t.Done() {
			return true
		}
	}
	return false
}

func (h *Handlers) hub(tableID string) *Hub {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hubs[tableID]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "err", err)
	}
}
