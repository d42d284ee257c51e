package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/battery"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
)

func TestMonitor_BroadcastsFrameToConnectedClient(t *testing.T) {
	eks := kinstate.NewStore()
	eks.Update(func(s *kinstate.State) {
		s.VelocityMps = 4.2
		s.ERPM = 1500
	})
	bat := battery.NewIntegrator(42.0)
	log := zap.NewNop().Sugar()

	m := New(":0", eks, bat, log)

	srv := httptest.NewServer(http.HandlerFunc(m.handleWS))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.broadcastLoop(ctx)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, 4.2, frame.VelocityMps)
	assert.Equal(t, 1500, frame.ERPM)
}

func TestMonitor_ClientRegistrationLifecycle(t *testing.T) {
	eks := kinstate.NewStore()
	bat := battery.NewIntegrator(42.0)
	log := zap.NewNop().Sugar()
	m := New(":0", eks, bat, log)

	srv := httptest.NewServer(http.HandlerFunc(m.handleWS))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	deadline := time.After(time.Second)
	for {
		m.clientsMu.RLock()
		n := len(m.clients)
		m.clientsMu.RUnlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("client never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	conn.Close()

	deadline = time.After(time.Second)
	for {
		m.clientsMu.RLock()
		n := len(m.clients)
		m.clientsMu.RUnlock()
		if n == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("client never deregistered")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
