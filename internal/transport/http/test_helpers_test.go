package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dmrelay/internal/config"
	"github.com/vovakirdan/dmrelay/internal/core"
	"github.com/vovakirdan/dmrelay/internal/proto"
	"github.com/vovakirdan/dmrelay/internal/store"
	"github.com/vovakirdan/dmrelay/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

type testServer struct {
	*httptest.Server
	hub   *core.Hub
	store store.Store
}

func startTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	logger := zerolog.Nop()
	st := createTestStore(t)
	hub := core.NewHub(st, &logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := NewServer(hub, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		hub.Wait()
	})

	return &testServer{Server: ts, hub: hub, store: st}
}

func (ts *testServer) wsURL(path string) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + path
}

func dial(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func writeJSON(t *testing.T, ctx context.Context, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, conn, v))
}

func readEnvelope(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.Envelope {
	t.Helper()

	readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(readCtx)
	require.NoError(t, err)

	var env proto.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func registerUser(t *testing.T, ctx context.Context, conn *websocket.Conn, userID int64, name string) {
	t.Helper()

	writeJSON(t, ctx, conn, map[string]any{"type": "register", "userId": userID, "userName": name})
	env := readEnvelope(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeRegisterSuccess, env.Type)
	require.NotNil(t, env.UserID)
	require.Equal(t, userID, *env.UserID)
}

func privateMessage(from, to any, content string) map[string]any {
	return map[string]any{"type": "private_message", "fromUserId": from, "toUserId": to, "content": content}
}
