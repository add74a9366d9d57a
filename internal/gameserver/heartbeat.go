package gameserver

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/encounter"
)

// defaultHeartbeatInterval is used when the configured interval is not
// positive.
const defaultHeartbeatInterval = 30 * time.Second

// Heartbeat periodically logs server vitals: connected pilots and live
// battles. The line is the operator's liveness signal on a quiet server.
type Heartbeat struct {
	hub        *Hub
	encounters *encounter.Manager
	interval   time.Duration
	logger     *zap.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// NewHeartbeat creates a heartbeat that reports every interval. A
// non-positive interval falls back to the default.
//
// Precondition: hub, encounters, and logger must not be nil.
func NewHeartbeat(hub *Hub, encounters *encounter.Manager, interval time.Duration, logger *zap.Logger) *Heartbeat {
	if hub == nil {
		panic("gameserver.NewHeartbeat: hub must not be nil")
	}
	if encounters == nil {
		panic("gameserver.NewHeartbeat: encounters must not be nil")
	}
	if logger == nil {
		panic("gameserver.NewHeartbeat: logger must not be nil")
	}
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}
	return &Heartbeat{
		hub:        hub,
		encounters: encounters,
		interval:   interval,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start blocks, emitting one vitals line per interval, until Stop is
// called.
//
// Postcondition: Returns nil after Stop.
func (h *Heartbeat) Start() error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.beat()
		case <-h.done:
			return nil
		}
	}
}

// Stop ends the heartbeat. Calling Stop more than once is safe.
func (h *Heartbeat) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Heartbeat) beat() {
	h.logger.Info("server vitals",
		zap.Int("pilots", h.hub.Sessions()),
		zap.Int("battles", h.encounters.Active()))
}
