package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/abrezinsky/scrumdeck/internal/engine"
	"github.com/abrezinsky/scrumdeck/internal/logger"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store/memory"
	"github.com/abrezinsky/scrumdeck/internal/testutil"
	"github.com/abrezinsky/scrumdeck/internal/websocket"
)

type wsEnv struct {
	srv *httptest.Server
	st  *memory.Store
	hub *websocket.Hub
}

func newWSEnv(t *testing.T) *wsEnv {
	t.Helper()
	st := memory.New()
	hub := websocket.New(logger.New(), st)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/", func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimPrefix(r.URL.Path, "/ws/")
		hub.ServeSession(w, r, sessionID)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &wsEnv{srv: srv, st: st, hub: hub}
}

// newEngine builds an engine over the environment's store so mutations
// flow to connected sockets.
func newEngine(t *testing.T, env *wsEnv) *engine.Engine {
	t.Helper()
	return engine.New(logger.New(), env.st)
}

func (e *wsEnv) dial(t *testing.T, sessionID string) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *gws.Conn) models.WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading message: %v", err)
	}
	return msg
}

func decodeSession(t *testing.T, msg models.WSMessage) *models.Session {
	t.Helper()
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		t.Fatalf("re-encoding payload: %v", err)
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		t.Fatalf("decoding session payload: %v", err)
	}
	return &session
}

func TestServeSession_StreamsInitialAndCommittedSnapshots(t *testing.T) {
	env := newWSEnv(t)
	eng := newEngine(t, env)
	sessionID := testutil.CreateTestSession(t, eng, "Sprint", testutil.User("u-host", "Host"))

	conn := env.dial(t, sessionID)

	msg := readMessage(t, conn)
	if msg.Type != websocket.MsgSession {
		t.Fatalf("expected session message, got %s", msg.Type)
	}
	if got := decodeSession(t, msg); got.ID != sessionID || got.Name != "Sprint" {
		t.Errorf("unexpected initial snapshot: %+v", got)
	}

	if ok, err := eng.RevealVotes(context.Background(), sessionID); err != nil || !ok {
		t.Fatalf("RevealVotes failed: ok=%v err=%v", ok, err)
	}

	msg = readMessage(t, conn)
	if msg.Type != websocket.MsgSession {
		t.Fatalf("expected session message, got %s", msg.Type)
	}
	if got := decodeSession(t, msg); !got.Revealed {
		t.Errorf("expected revealed snapshot, got %+v", got)
	}
}

func TestServeSession_MissingSessionSendsNotFound(t *testing.T) {
	env := newWSEnv(t)
	conn := env.dial(t, "no-such-session")

	msg := readMessage(t, conn)
	if msg.Type != websocket.MsgNotFound {
		t.Errorf("expected not_found message, got %s", msg.Type)
	}
}

func TestServeSession_DeleteSendsDeletedAndCloses(t *testing.T) {
	env := newWSEnv(t)
	eng := newEngine(t, env)
	sessionID := testutil.CreateTestSession(t, eng, "Sprint", testutil.User("u-host", "Host"))

	conn := env.dial(t, sessionID)
	if msg := readMessage(t, conn); msg.Type != websocket.MsgSession {
		t.Fatalf("expected initial snapshot, got %s", msg.Type)
	}

	if ok, err := eng.DeleteSession(context.Background(), sessionID); err != nil || !ok {
		t.Fatalf("DeleteSession failed: ok=%v err=%v", ok, err)
	}

	msg := readMessage(t, conn)
	if msg.Type != websocket.MsgDeleted {
		t.Fatalf("expected deleted message, got %s", msg.Type)
	}

	// The stream is terminal after a delete.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection closed after deleted message")
	}
}

func TestClientCount_TracksConnections(t *testing.T) {
	env := newWSEnv(t)
	eng := newEngine(t, env)
	sessionID := testutil.CreateTestSession(t, eng, "Sprint", testutil.User("u-host", "Host"))

	conn := env.dial(t, sessionID)
	readMessage(t, conn)

	if n := env.hub.ClientCount(); n != 1 {
		t.Errorf("expected 1 client, got %d", n)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for env.hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected client count to drop after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
