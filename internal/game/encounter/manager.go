package encounter

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/board"
)

// Manager owns every active encounter, keyed by encounter ID. The registry
// is safe for concurrent use; each Encounter itself must still be driven
// from a single goroutine.
type Manager struct {
	mu      sync.RWMutex
	battles map[string]*Encounter

	boards    map[string]*board.Board
	templates map[string]*actor.Template
	cfg       Config
	hooks     BattleHooks
	logger    *zap.Logger
}

// NewManager creates a manager serving the given boards and enemy
// templates.
//
// Precondition: hooks and logger must not be nil.
func NewManager(boards map[string]*board.Board, templates map[string]*actor.Template, cfg Config, hooks BattleHooks, logger *zap.Logger) *Manager {
	if hooks == nil {
		panic("encounter.NewManager: hooks must not be nil")
	}
	if logger == nil {
		panic("encounter.NewManager: logger must not be nil")
	}
	return &Manager{
		battles:   make(map[string]*Encounter),
		boards:    boards,
		templates: templates,
		cfg:       cfg,
		hooks:     hooks,
		logger:    logger,
	}
}

// Start begins a new encounter on the named board.
//
// Postcondition: Returns the running encounter, registered under a fresh
// ID, or an error when the board is unknown or cannot be populated.
func (m *Manager) Start(boardID string) (*Encounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.boards[boardID]
	if !ok {
		return nil, fmt.Errorf("unknown board %q", boardID)
	}
	enc, err := NewEncounter(uuid.NewString(), b, m.templates, m.cfg, m.hooks, m.logger)
	if err != nil {
		return nil, fmt.Errorf("start encounter on board %q: %w", boardID, err)
	}
	m.battles[enc.ID] = enc
	m.logger.Info("encounter started",
		zap.String("encounter", enc.ID),
		zap.String("board", boardID),
		zap.Int("enemies", len(enc.roster)))
	return enc, nil
}

// Get returns the encounter registered under id.
//
// Postcondition: Returns (encounter, true) if found, or (nil, false)
// otherwise.
func (m *Manager) Get(id string) (*Encounter, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	enc, ok := m.battles[id]
	return enc, ok
}

// End removes the encounter registered under id. Ending an unknown ID is a
// no-op.
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.battles[id]; ok {
		delete(m.battles, id)
		m.logger.Info("encounter ended", zap.String("encounter", id))
	}
}

// Active returns the number of registered encounters.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.battles)
}

// FindEnemy locates a living enemy by UID across every active encounter.
// Board scripts query enemies this way; the UID is globally unique, so the
// first match is the only match.
//
// Postcondition: Returns (enemy, true) if a living enemy carries uid.
func (m *Manager) FindEnemy(uid string) (*actor.Enemy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, enc := range m.battles {
		for _, en := range enc.roster {
			if en.UID == uid {
				return en, true
			}
		}
	}
	return nil, false
}

// BoardIDs returns the IDs of every board this manager can start an
// encounter on.
func (m *Manager) BoardIDs() []string {
	ids := make([]string, 0, len(m.boards))
	for id := range m.boards {
		ids = append(ids, id)
	}
	return ids
}
