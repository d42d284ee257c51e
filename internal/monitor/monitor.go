// Package monitor exposes a read-only WebSocket mirror of the simulator's
// kinematic and battery state, adapted from the dashboard's client
// broadcast registry. It observes; it never writes into the simulation.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shaunagostinho/eboard-vesc-sim/internal/battery"
	"github.com/shaunagostinho/eboard-vesc-sim/internal/kinstate"
)

// Monitor broadcasts periodic telemetry frames to any connected WebSocket
// clients over HTTP.
type Monitor struct {
	listenAddr string
	eks        *kinstate.Store
	bat        *battery.Integrator
	log        *zap.SugaredLogger

	clients   map[*client]struct{}
	clientsMu sync.RWMutex

	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Frame is the JSON structure sent to every connected client.
type Frame struct {
	VelocityMps   float64 `json:"velocityMps"`
	PitchDeg      float64 `json:"pitchDeg"`
	ERPM          int     `json:"erpm"`
	MotorCurrentA float64 `json:"motorCurrentA"`
	InputCurrentA float64 `json:"inputCurrentA"`
	WattHours     float64 `json:"wattHours"`
	Stamp         int64   `json:"stamp"`
}

// New builds a Monitor that mirrors the given shared state.
func New(listenAddr string, eks *kinstate.Store, bat *battery.Integrator, log *zap.SugaredLogger) *Monitor {
	return &Monitor{
		listenAddr: listenAddr,
		eks:        eks,
		bat:        bat,
		log:        log,
		clients:    make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run starts the HTTP server and the broadcast loop, blocking until ctx is
// canceled.
func (m *Monitor) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.handleWS)

	srv := &http.Server{Addr: m.listenAddr, Handler: mux}

	go m.broadcastLoop(ctx)

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	m.log.Infow("monitor listening", "addr", m.listenAddr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (m *Monitor) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Errorw("monitor ws upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}

	m.clientsMu.Lock()
	m.clients[c] = struct{}{}
	m.clientsMu.Unlock()
	m.log.Infow("monitor client connected", "total", len(m.clients))

	go func() {
		defer conn.Close()
		for msg := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}()

	go func() {
		defer func() {
			m.clientsMu.Lock()
			delete(m.clients, c)
			m.clientsMu.Unlock()
			close(c.send)
			m.log.Infow("monitor client disconnected", "total", len(m.clients))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (m *Monitor) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := m.eks.Read()
			frame := Frame{
				VelocityMps:   s.VelocityMps,
				PitchDeg:      s.PitchDeg,
				ERPM:          s.ERPM,
				MotorCurrentA: s.MotorCurrentA,
				InputCurrentA: s.InputCurrentA,
				WattHours:     m.bat.WattHoursConsumed(),
				Stamp:         time.Now().UnixMilli(),
			}
			m.broadcast(frame)
		}
	}
}

func (m *Monitor) broadcast(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()
	for c := range m.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}
