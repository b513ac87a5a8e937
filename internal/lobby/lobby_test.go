package lobby_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterbarons/internal/lobby"
)

func TestJoinAndStart(t *testing.T) {
	l := lobby.NewLobby("t1", 3)

	require.NoError(t, l.Join("a", "Ann"))
	assert.ErrorIs(t, l.Start(), lobby.ErrNotEnoughPlayers)

	require.NoError(t, l.Join("b", "Bo"))
	assert.False(t, l.CanStart())
	assert.ErrorIs(t, l.Start(), lobby.ErrNotReady)

	l.SetReady("a", true)
	l.SetReady("b", true)
	assert.True(t, l.CanStart())
	require.NoError(t, l.Start())
	assert.True(t, l.IsStarted())

	assert.ErrorIs(t, l.Start(), lobby.ErrStarted)
	assert.ErrorIs(t, l.Join("c", "Cy"), lobby.ErrStarted)
}

func TestJoinFull(t *testing.T) {
	l := lobby.NewLobby("t1", 2)
	require.NoError(t, l.Join("a", "Ann"))
	require.NoError(t, l.Join("b", "Bo"))
	assert.ErrorIs(t, l.Join("c", "Cy"), lobby.ErrFull)
}

func TestRejoinRenames(t *testing.T) {
	l := lobby.NewLobby("t1", 4)
	require.NoError(t, l.Join("a", "Ann"))
	require.NoError(t, l.Join("a", "Anna"))

	players := l.GetPlayers()
	require.Len(t, players, 1)
	assert.Equal(t, "Anna", players[0].Name)
	assert.True(t, l.Has("a"))
	assert.False(t, l.Has("b"))
}

func TestLeave(t *testing.T) {
	l := lobby.NewLobby("t1", 4)
	require.NoError(t, l.Join("a", "Ann"))
	require.NoError(t, l.Join("b", "Bo"))
	l.Leave("a")

	players := l.GetPlayers()
	require.Len(t, players, 1)
	assert.Equal(t, "b", players[0].ID)
}

func TestMaxPlayersFloor(t *testing.T) {
	l := lobby.NewLobby("t1", 0)
	assert.Equal(t, lobby.MinPlayers, l.MaxPlayers)
}

func TestManager(t *testing.T) {
	m := lobby.NewManager(5)
	id := m.Create()

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	l := m.Get(id)
	require.NotNil(t, l)
	assert.Equal(t, 5, l.MaxPlayers)
	assert.Equal(t, 1, m.Len())

	m.Remove(id)
	assert.Nil(t, m.Get(id))
}

func TestSeat(t *testing.T) {
	l := lobby.NewLobby("t1", 3)
	require.NoError(t, l.Seat([]lobby.PlayerInfo{{ID: "b", Name: "Bo"}, {ID: "a", Name: "Ann"}}))

	players := l.GetPlayers()
	require.Len(t, players, 2)
	assert.Equal(t, "b", players[0].ID)
	assert.True(t, players[1].Ready)
	assert.True(t, l.IsStarted())
	assert.NoError(t, l.Join("a", "Anna"), "seated players can rejoin")
	assert.ErrorIs(t, l.Join("c", "Cy"), lobby.ErrStarted)
	assert.ErrorIs(t, l.Seat(nil), lobby.ErrStarted)

	small := lobby.NewLobby("t2", 2)
	assert.ErrorIs(t, small.Seat(make([]lobby.PlayerInfo, 3)), lobby.ErrFull)
}
