package vesc

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// heartbeatTimeout is the window within which a heartbeat command must
// arrive or the simulation is considered disconnected and terminates.
const heartbeatTimeout = 1500 * time.Millisecond

// heartbeatWatchdog re-arms a timer on every kick and exits the process if
// the timer ever fires. There is no graceful recovery path: a missed
// heartbeat is fatal by design.
type heartbeatWatchdog struct {
	mu    sync.Mutex
	timer *time.Timer
	log   *zap.SugaredLogger
}

func newHeartbeatWatchdog(log *zap.SugaredLogger) *heartbeatWatchdog {
	return &heartbeatWatchdog{log: log}
}

// Kick (re)arms the watchdog timer, canceling any pending one first.
func (h *heartbeatWatchdog) Kick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(heartbeatTimeout, h.expired)
}

func (h *heartbeatWatchdog) expired() {
	h.log.Errorw("heartbeat command was not received in time, simulation has terminated")
	os.Exit(1)
}
