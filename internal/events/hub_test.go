package events

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := ws.ReadMessage()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestHubBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	a, b := dial(t, srv.URL), dial(t, srv.URL)
	assert.Equal(t, "welcome", readEvent(t, a)["type"])
	assert.Equal(t, "welcome", readEvent(t, b)["type"])
	require.Eventually(t, func() bool { return hub.Stats().WSClients == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: ArticleDeleted, IDs: []string{"a1"}, By: "u1"})
	for _, ws := range []*websocket.Conn{a, b} {
		got := readEvent(t, ws)
		assert.Equal(t, ArticleDeleted, got["type"])
		assert.Equal(t, []any{"a1"}, got["ids"])
		assert.Equal(t, "u1", got["by"])
		assert.NotEmpty(t, got["at"])
	}

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Stats().WSClients)
	require.NoError(t, b.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err)
	_ = b.Close()
}

func TestPublishWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Publish(Event{Type: IngestCompleted})
	Discard{}.Publish(Event{Type: IngestCompleted})
	assert.Equal(t, Stats{}, hub.Stats())
}
