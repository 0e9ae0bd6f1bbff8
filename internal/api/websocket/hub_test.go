package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// dialTestClient connects a real websocket client to a hub served by an
// httptest server, so the hub sees a registered client with a live conn.
func dialTestClient(t *testing.T, hub *Hub) *gws.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	return conn
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	conn := dialTestClient(t, hub)

	hub.Broadcast(NewDashboardPublishedMessage("Linie 1"))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeDashboardPublished, msg.Type)
}

func TestHub_ConcurrentBroadcastAndCount(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	conn := dialTestClient(t, hub)

	// Drain on the client side so the send buffer never fills and the
	// fan-out is never tempted to evict.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				hub.Broadcast(NewSessionStateMessage("draft", "empty"))
				_ = hub.GetClientCount()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, hub.GetClientCount())

	conn.Close()
	<-done
}
