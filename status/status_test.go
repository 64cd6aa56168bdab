package status

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubLast(t *testing.T) {
	h := NewHub()
	assert.Nil(t, h.Last())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	h.Progress(0.5, "%d/%d", 1, 2)
	require.Eventually(t, func() bool { return h.Last() != nil }, time.Second, 5*time.Millisecond)

	var e Event
	require.NoError(t, json.Unmarshal(h.Last(), &e))
	assert.Equal(t, "1/2", e.Message)
	assert.Equal(t, PROGRESS, e.Type)
	assert.Equal(t, float32(0.5), e.Progress)
}

func TestHubPublishNeverBlocks(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Info("event %d", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without running hub")
	}
}

func TestHubWebsocket(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	h.Error("failed %s", "mot_x.bin")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var e Event
	require.NoError(t, json.Unmarshal(msg, &e))
	assert.Equal(t, "failed mot_x.bin", e.Message)
	assert.Equal(t, ERROR, e.Type)
}
