package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterbarons/internal/catalog"
	"waterbarons/internal/config"
	"waterbarons/internal/engine"
	"waterbarons/internal/engine/hazards"
	"waterbarons/internal/protocol"
	"waterbarons/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	return newStoredServer(t, nil)
}

func newStoredServer(t *testing.T, store Store) (*Server, *httptest.Server) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	srv := New(config.Config{Port: 8080, MaxPlayers: 4, Seed: 5}, cat, store)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		srv.handlers.CloseAll()
		ts.Close()
	})
	return srv, ts
}

func createTable(t *testing.T, ts *httptest.Server) CreateResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/create", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out CreateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(protocol.MustEnvelope(typ, payload)))
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, match func(protocol.Envelope) bool) protocol.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var env protocol.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == typ && (match == nil || match(env)) {
			return env
		}
	}
}

func lobbySize(n int) func(protocol.Envelope) bool {
	return func(env protocol.Envelope) bool {
		var u protocol.LobbyUpdate
		return env.Decode(&u) == nil && len(u.Players) == n
	}
}

func TestCreateRequiresPost(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/create")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCreateAndQR(t *testing.T) {
	_, ts := newTestServer(t)
	created := createTable(t, ts)
	assert.NotEmpty(t, created.TableID)
	assert.Contains(t, created.JoinURL, created.TableID)

	resp, err := http.Get(ts.URL + "/api/qr?table=" + created.TableID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	missing, err := http.Get(ts.URL + "/api/qr?table=nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestPlayerID(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/player-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, string(body), 36)
}

func TestGamesWithoutStore(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/games")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLobbyToDraftPrompt(t *testing.T) {
	_, ts := newTestServer(t)
	table := createTable(t, ts).TableID

	ann := dial(t, ts, "table="+table)
	sendMsg(t, ann, protocol.MsgJoin, protocol.JoinMsg{PlayerID: "a", Name: "Ann"})
	readUntil(t, ann, protocol.MsgLobbyUpdate, lobbySize(1))

	bo := dial(t, ts, "table="+table)
	sendMsg(t, bo, protocol.MsgJoin, protocol.JoinMsg{PlayerID: "b", Name: "Bo"})
	readUntil(t, bo, protocol.MsgLobbyUpdate, lobbySize(2))

	sendMsg(t, ann, protocol.MsgStartGame, nil)
	readUntil(t, ann, protocol.MsgError, nil)

	sendMsg(t, ann, protocol.MsgReady, protocol.ReadyMsg{Ready: true})
	sendMsg(t, bo, protocol.MsgReady, protocol.ReadyMsg{Ready: true})
	readUntil(t, bo, protocol.MsgLobbyUpdate, func(env protocol.Envelope) bool {
		var u protocol.LobbyUpdate
		return env.Decode(&u) == nil && len(u.Players) == 2 && u.Players[0].Ready && u.Players[1].Ready
	})
	sendMsg(t, bo, protocol.MsgStartGame, nil)

	env := readUntil(t, ann, protocol.MsgDraftPrompt, nil)
	var prompt protocol.DraftPrompt
	require.NoError(t, env.Decode(&prompt))
	assert.Equal(t, 1, prompt.Pick)
	assert.Len(t, prompt.Options, 3)

	// out of turn
	sendMsg(t, bo, protocol.MsgDraftPick, protocol.DraftPickMsg{Index: 0})
	readUntil(t, bo, protocol.MsgError, nil)

	sendMsg(t, ann, protocol.MsgDraftPick, protocol.DraftPickMsg{Index: 0})
	env = readUntil(t, bo, protocol.MsgDraftPrompt, nil)
	require.NoError(t, env.Decode(&prompt))
	assert.Equal(t, 1, prompt.Pick)

	resp, err := http.Get(ts.URL + "/api/state?table=" + table)
	require.NoError(t, err)
	defer resp.Body.Close()
	var view map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "WhimDraft", view["phase"])
}

// savedGame stores a two player game after one round, ended first when
// over is set.
func savedGame(t *testing.T, store *storage.Store, over bool) *engine.Game {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	players := []*engine.Player{engine.NewPlayer("a", "Ann"), engine.NewPlayer("b", "Bo")}
	g := engine.NewGame(players, cat.GameConfig(9), hazards.NewRegistry())
	require.NoError(t, g.PlayRound(engine.PassiveDecider{}))
	if over {
		g.EndGame()
	}
	require.NoError(t, store.SaveGame(context.Background(), g))
	return g
}

func resume(t *testing.T, ts *httptest.Server, gameID string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/resume?game="+gameID, "application/json", nil)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestResumeSavedGame(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "wb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	g := savedGame(t, store, false)
	_, ts := newStoredServer(t, store)

	resp := resume(t, ts, g.ID)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out ResumeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, g.ID, out.GameID)
	assert.Equal(t, 2, out.Round)
	assert.Contains(t, out.JoinURL, out.TableID)

	assert.Equal(t, http.StatusConflict, resume(t, ts, g.ID).StatusCode, "already running")

	ann := dial(t, ts, "table="+out.TableID)
	sendMsg(t, ann, protocol.MsgJoin, protocol.JoinMsg{PlayerID: "a", Name: "Ann"})
	env := readUntil(t, ann, protocol.MsgDraftPrompt, nil)
	var prompt protocol.DraftPrompt
	require.NoError(t, env.Decode(&prompt))
	assert.Equal(t, 1, prompt.Pick)

	stranger := dial(t, ts, "table="+out.TableID)
	sendMsg(t, stranger, protocol.MsgJoin, protocol.JoinMsg{PlayerID: "z", Name: "Zed"})
	readUntil(t, stranger, protocol.MsgError, nil)
}

func TestResumeErrors(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "wb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	over := savedGame(t, store, true)
	_, ts := newStoredServer(t, store)

	assert.Equal(t, http.StatusNotFound, resume(t, ts, "nope").StatusCode)
	assert.Equal(t, http.StatusBadRequest, resume(t, ts, "").StatusCode)
	assert.Equal(t, http.StatusConflict, resume(t, ts, over.ID).StatusCode)

	get, err := http.Get(ts.URL + "/api/resume?game=" + over.ID)
	require.NoError(t, err)
	get.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, get.StatusCode)

	_, bare := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, resume(t, bare, over.ID).StatusCode)
}
