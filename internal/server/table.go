package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"waterbarons/internal/catalog"
	"waterbarons/internal/engine"
	"waterbarons/internal/protocol"
	"waterbarons/internal/storage"
)

var ErrBusy = errors.New("table is busy, try again")

// Store is the persistence the server needs.
type Store interface {
	SaveGame(ctx context.Context, g *engine.Game) error
	LoadSnapshot(ctx context.Context, id string) (engine.Snapshot, error)
	SaveScores(ctx context.Context, gameID string, scores []engine.ScoreEntry) error
	ListGames(ctx context.Context) ([]storage.GameSummary, error)
	AuditLog(ctx context.Context, gameID string, limit int) ([]storage.AuditEntry, error)
}

// TableDeps is what every table is built from.
type TableDeps struct {
	Catalog   *catalog.Catalog
	Store     Store // may be nil
	Seed      uint64
	MaxRounds int           // 0 plays until the world is uninhabitable
	Timeout   time.Duration // per decision; 0 waits forever
}

// Table runs one game. Only the goroutine in Run touches the Game; other
// goroutines see the cached envelopes.
type Table struct {
	ID      string
	game    *engine.Game
	hub     *Hub
	deps    TableDeps
	decider *RemoteDecider
	replies chan IncomingMessage

	mu      sync.Mutex
	public  protocol.Envelope
	views   map[string]protocol.Envelope
	prompts map[string]protocol.Envelope
	logSent int
	done    bool
}

func NewTable(g *engine.Game, hub *Hub, deps TableDeps) *Table {
	t := &Table{
		ID:      g.ID,
		game:    g,
		hub:     hub,
		deps:    deps,
		replies: make(chan IncomingMessage, 64),
		views:   make(map[string]protocol.Envelope),
		prompts: make(map[string]protocol.Envelope),
	}
	var actions []catalog.Action
	if deps.Catalog != nil {
		actions = deps.Catalog.Actions
	}
	t.decider = NewRemoteDecider(t, actions, deps.Timeout)
	t.publish()
	return t
}

// Run plays rounds until the game ends or ctx is cancelled. The game is
// saved after every round.
func (t *Table) Run(ctx context.Context) {
	t.decider.ctx = ctx
	defer t.finish(context.WithoutCancel(ctx))

	for ctx.Err() == nil {
		if err := t.game.PlayRound(t.decider); err != nil {
			return
		}
		if t.deps.MaxRounds > 0 && t.game.Round > t.deps.MaxRounds && t.game.Phase != engine.PhaseGameOver {
			t.game.Logf("Round limit of %d reached", t.deps.MaxRounds)
			t.game.EndGame()
		}
		t.save(ctx)
		t.publish()
		if t.game.Phase == engine.PhaseGameOver {
			return
		}
	}
}

func (t *Table) finish(ctx context.Context) {
	t.save(ctx)
	t.publish()
	if t.game.Phase == engine.PhaseGameOver {
		if t.deps.Store != nil {
			if err := t.deps.Store.SaveScores(ctx, t.game.ID, t.game.Scores); err != nil {
				slog.Error("save scores failed", "game", t.game.ID, "err", err)
			}
		}
		t.hub.broadcastAll(protocol.MustEnvelope(protocol.MsgGameOver, protocol.GameOver{Scores: t.game.Scores}))
	}
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
	slog.Info("table finished", "game", t.game.ID, "round", t.game.Round, "phase", t.game.Phase.String())
}

func (t *Table) save(ctx context.Context) {
	if t.deps.Store == nil {
		return
	}
	if err := t.deps.Store.SaveGame(ctx, t.game); err != nil {
		slog.Error("save game failed", "game", t.game.ID, "err", err)
	}
}

// Deliver queues a message for the game goroutine.
func (t *Table) Deliver(msg IncomingMessage) error {
	select {
	case t.replies <- msg:
		return nil
	default:
		return ErrBusy
	}
}

// Done reports whether Run has returned.
func (t *Table) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// PublicState returns the last published public view envelope.
func (t *Table) PublicState() protocol.Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.public
}

// publish renders the views from the game and pushes them to every client.
// Call only from the game goroutine.
func (t *Table) publish() {
	public := protocol.MustEnvelope(protocol.MsgGameState, t.game.PublicView())
	views := make(map[string]protocol.Envelope, len(t.game.Players))
	for _, p := range t.game.Players {
		views[p.ID] = protocol.MustEnvelope(protocol.MsgPlayerState, t.game.ViewFor(p.ID))
	}
	lines := t.game.Log()

	t.mu.Lock()
	t.public = public
	t.views = views
	fresh := lines[min(t.logSent, len(lines)):]
	t.logSent = len(lines)
	t.mu.Unlock()

	if len(fresh) > 0 {
		t.hub.broadcastAll(protocol.MustEnvelope(protocol.MsgLog, protocol.LogMsg{Lines: fresh}))
	}
	t.hub.broadcastViews(t.viewFor)
}

func (t *Table) viewFor(c *Client) protocol.Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c.Type == ClientPlayer {
		if v, ok := t.views[c.PlayerID]; ok {
			return v
		}
	}
	return t.public
}

// resend brings a newly connected client up to date, including any prompt
// still waiting for that player.
func (t *Table) resend(c *Client) {
	t.hub.send(c, t.viewFor(c))
	t.mu.Lock()
	prompt, ok := t.prompts[c.PlayerID]
	t.mu.Unlock()
	if ok && c.Type == ClientPlayer {
		t.hub.send(c, prompt)
	}
}

func (t *Table) prompt(playerID string, env protocol.Envelope) {
	t.mu.Lock()
	t.prompts[playerID] = env
	t.mu.Unlock()
	t.hub.sendToPlayer(playerID, env)
}

func (t *Table) clearPrompt(playerID string) {
	t.mu.Lock()
	delete(t.prompts, playerID)
	t.mu.Unlock()
}
