package spectate

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libklein/llm-fishtank/fishtank/crossclues"
	"github.com/libklein/llm-fishtank/fishtank/engine"
)

func testSnapshot() crossclues.Snapshot {
	return crossclues.Snapshot{
		GameID:   "g1",
		State:    "in_progress",
		Rows:     1,
		Cols:     2,
		RowWords: []string{"apple"},
		ColWords: []string{"river", "glass"},
	}
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev map[string]any
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func waitForClients(t *testing.T, s *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return s.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(New().Handler())
	defer srv.Close()

	status, body := getJSON(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["ok"])
}

func TestGameSnapshot(t *testing.T) {
	s := New()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	status, _ := getJSON(t, srv.URL+"/api/game")
	assert.Equal(t, http.StatusNotFound, status)

	s.GameStarted(testSnapshot())
	status, body := getJSON(t, srv.URL+"/api/game")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "g1", body["game_id"])
	assert.Equal(t, "in_progress", body["state"])

	s.GameOver(crossclues.Result{GameID: "g1", Complete: true})
	_, body = getJSON(t, srv.URL+"/api/game")
	assert.Equal(t, "complete", body["state"])
}

func TestStream_SnapshotThenEvents(t *testing.T) {
	s := New()
	s.GameStarted(testSnapshot())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	ev := readEvent(t, conn)
	assert.Equal(t, EventSnapshot, ev["type"])
	waitForClients(t, s, 1)

	s.RoundStarted(1, "alice", engine.Coord("A", 1))
	ev = readEvent(t, conn)
	assert.Equal(t, EventRoundStart, ev["type"])
	assert.Equal(t, float64(1), ev["number"])
	assert.NotContains(t, ev, "target")

	s.ClueGiven(1, "alice", engine.Coord("A", 1), "orchard")
	ev = readEvent(t, conn)
	assert.Equal(t, EventClue, ev["type"])
	assert.Equal(t, "orchard", ev["clue"])
	assert.Equal(t, "alice", ev["clue_giver"])

	snap := testSnapshot()
	snap.Revealed = []crossclues.RevealedCell{{Coordinate: engine.Coord("A", 1), Clue: "orchard", Correct: true}}
	s.RoundResolved(crossclues.Round{Number: 1, Target: engine.Coord("A", 1), Clue: "orchard", Correct: true}, snap)
	ev = readEvent(t, conn)
	assert.Equal(t, EventRound, ev["type"])
	round := ev["round"].(map[string]any)
	assert.Equal(t, []any{"A", float64(1)}, round["target"])
	revealed := ev["snapshot"].(map[string]any)["revealed"].([]any)
	assert.Len(t, revealed, 1)

	s.GameOver(crossclues.Result{GameID: "g1", Complete: true})
	ev = readEvent(t, conn)
	assert.Equal(t, EventGameOver, ev["type"])
	assert.Equal(t, true, ev["result"].(map[string]any)["complete"])
}

func TestBroadcastNeverBlocks(t *testing.T) {
	s := New()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	dial(t, srv) // never reads
	waitForClients(t, s, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10*clientBuffer; i++ {
			s.ClueGiven(i, "alice", engine.Coord("A", 1), "x")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestClientDisconnectIsDropped(t *testing.T) {
	s := New()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, s, 1)
	require.NoError(t, conn.Close())
	waitForClients(t, s, 0)
}

func TestServe_ShutsDownWithContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	s := New()

	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
