package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterbarons/internal/catalog"
	"waterbarons/internal/engine"
	"waterbarons/internal/engine/hazards"
	"waterbarons/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "wb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newGame(t *testing.T) (*engine.Game, engine.GameConfig) {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	cfg := c.GameConfig(7)
	players := []*engine.Player{engine.NewPlayer("a", "Ann"), engine.NewPlayer("b", "Bo")}
	return engine.NewGame(players, cfg, hazards.NewRegistry()), cfg
}

func TestSaveAndLoadGame(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	g, cfg := newGame(t)
	require.NoError(t, g.PlayRound(engine.PassiveDecider{}))

	require.NoError(t, s.SaveGame(ctx, g))

	snap, err := s.LoadSnapshot(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, snap.ID)
	assert.Equal(t, g.Round, snap.Round)

	restored, err := engine.Restore(snap, cfg, hazards.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, g.Log(), restored.Log())
	assert.Equal(t, g.TrackLevels(), restored.TrackLevels())
	assert.Equal(t, g.FacilityDeck.Len(), restored.FacilityDeck.Len())
}

func TestSaveGameAppendsAudit(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	g, _ := newGame(t)

	require.NoError(t, s.SaveGame(ctx, g))
	first, err := s.AuditLog(ctx, g.ID, 0)
	require.NoError(t, err)
	assert.Len(t, first, len(g.Log()))

	require.NoError(t, g.PlayRound(engine.PassiveDecider{}))
	require.NoError(t, s.SaveGame(ctx, g))

	all, err := s.AuditLog(ctx, g.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, len(g.Log()))
	for i, e := range all {
		assert.Equal(t, i, e.Seq)
		assert.Equal(t, g.Log()[i], e.Text)
	}

	limited, err := s.AuditLog(ctx, g.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLoadSnapshotNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.LoadSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListGames(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	games, err := s.ListGames(ctx)
	require.NoError(t, err)
	assert.Empty(t, games)

	g1, _ := newGame(t)
	g2, _ := newGame(t)
	require.NoError(t, s.SaveGame(ctx, g1))
	require.NoError(t, s.SaveGame(ctx, g2))

	games, err = s.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	ids := []string{games[0].ID, games[1].ID}
	assert.ElementsMatch(t, []string{g1.ID, g2.ID}, ids)
	assert.Equal(t, "Setup", games[0].Phase)
	assert.False(t, games[0].Uninhabitable)
}

func TestSaveScores(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	g, _ := newGame(t)
	g.EndGame()

	require.NoError(t, s.SaveScores(ctx, g.ID, g.Scores))
	// saving twice replaces
	require.NoError(t, s.SaveScores(ctx, g.ID, g.Scores))

	rows, err := s.Scores(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, g.Scores[0].PlayerID, rows[0].PlayerID)
	assert.Equal(t, g.Scores[0].Total, rows[0].Total)
}
