package lobby

import (
	"errors"
	"sync"
)

var (
	ErrStarted          = errors.New("game already started")
	ErrFull             = errors.New("table is full")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotReady         = errors.New("not all players ready")
)

// MinPlayers is the smallest table that can start.
const MinPlayers = 2

// PlayerInfo holds lobby-level player information.
type PlayerInfo struct {
	ID    string
	Name  string
	Ready bool
}

// Lobby is a table waiting for its barons. Seat order is join order.
type Lobby struct {
	mu         sync.Mutex
	ID         string
	Players    []*PlayerInfo
	MaxPlayers int
	MinPlayers int
	Started    bool
}

// NewLobby creates a new lobby. maxPlayers below MinPlayers is raised to it.
func NewLobby(id string, maxPlayers int) *Lobby {
	return &Lobby{
		ID:         id,
		MaxPlayers: max(maxPlayers, MinPlayers),
		MinPlayers: MinPlayers,
	}
}

// Join adds a player to the lobby. Joining again with a known ID renames.
func (l *Lobby) Join(id, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.Players {
		if p.ID == id {
			p.Name = name
			return nil
		}
	}
	if l.Started {
		return ErrStarted
	}
	if len(l.Players) >= l.MaxPlayers {
		return ErrFull
	}
	l.Players = append(l.Players, &PlayerInfo{ID: id, Name: name})
	return nil
}

// Leave removes a player before the game starts.
func (l *Lobby) Leave(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Started {
		return
	}
	for i, p := range l.Players {
		if p.ID == id {
			l.Players = append(l.Players[:i], l.Players[i+1:]...)
			return
		}
	}
}

// SetReady sets a player's ready state.
func (l *Lobby) SetReady(id string, ready bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.Players {
		if p.ID == id {
			p.Ready = ready
			return
		}
	}
}

// Has reports whether id has a seat.
func (l *Lobby) Has(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// CanStart returns true if enough players are seated and all are ready.
func (l *Lobby) CanStart() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startErr() == nil
}

func (l *Lobby) startErr() error {
	if l.Started {
		return ErrStarted
	}
	if len(l.Players) < l.MinPlayers {
		return ErrNotEnoughPlayers
	}
	for _, p := range l.Players {
		if !p.Ready {
			return ErrNotReady
		}
	}
	return nil
}

// Start marks the lobby as started.
func (l *Lobby) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.startErr(); err != nil {
		return err
	}
	l.Started = true
	return nil
}

// Seat fills an empty lobby with players of a game already in progress and
// marks it started. Seat order is the order given.
func (l *Lobby) Seat(players []PlayerInfo) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Started {
		return ErrStarted
	}
	if len(players) > l.MaxPlayers {
		return ErrFull
	}
	l.Players = make([]*PlayerInfo, len(players))
	for i, p := range players {
		l.Players[i] = &PlayerInfo{ID: p.ID, Name: p.Name, Ready: true}
	}
	l.Started = true
	return nil
}

// IsStarted reports whether Start succeeded.
func (l *Lobby) IsStarted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Started
}

// GetPlayers returns a copy of the player list.
func (l *Lobby) GetPlayers() []PlayerInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]PlayerInfo, len(l.Players))
	for i, p := range l.Players {
		out[i] = *p
	}
	return out
}
