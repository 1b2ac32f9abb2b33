package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lk16/reversi/internal/search"
	"github.com/lk16/reversi/internal/tt"
)

// Manager keeps track of running games. Every game gets its own engine and position cache.
type Manager struct {
	mu       sync.Mutex
	games    map[uuid.UUID]*Controller
	config   search.Config
	capacity int
	recorder StatsRecorder
	options  []search.Option
}

// NewManager creates a Manager. Recorder may be nil.
func NewManager(config search.Config, capacity int, recorder StatsRecorder, opts ...search.Option) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if capacity <= 0 {
		capacity = tt.DefaultCapacity
	}

	return &Manager{
		games:    make(map[uuid.UUID]*Controller),
		config:   config,
		capacity: capacity,
		recorder: recorder,
		options:  opts,
	}, nil
}

// Config returns the search configuration used for new games.
func (m *Manager) Config() search.Config {
	return m.config
}

func (m *Manager) newEngine() (*search.Engine, error) {
	opts := append([]search.Option{search.WithTable(tt.New(m.capacity))}, m.options...)
	return search.NewEngine(m.config, opts...)
}

func (m *Manager) controllerOptions() []ControllerOption {
	if m.recorder == nil {
		return nil
	}
	return []ControllerOption{WithRecorder(m.recorder)}
}

// Create starts a new game.
func (m *Manager) Create(settings Settings) (*Controller, error) {
	engine, err := m.newEngine()
	if err != nil {
		return nil, fmt.Errorf("error creating engine: %w", err)
	}

	c, err := New(settings, engine, m.controllerOptions()...)
	if err != nil {
		return nil, err
	}

	m.add(c)
	return c, nil
}

// Restore continues a saved game under a new ID.
func (m *Manager) Restore(data SaveData) (*Controller, error) {
	engine, err := m.newEngine()
	if err != nil {
		return nil, fmt.Errorf("error creating engine: %w", err)
	}

	c, err := Restore(data, engine, m.controllerOptions()...)
	if err != nil {
		return nil, err
	}

	m.add(c)
	return c, nil
}

func (m *Manager) add(c *Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.games[c.ID()] = c
}

// Get finds a game by its ID.
func (m *Manager) Get(id string) (*Controller, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrGameNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.games[parsed]
	if !ok {
		return nil, ErrGameNotFound
	}

	return c, nil
}

// Delete stops a game and forgets it.
func (m *Manager) Delete(id string) error {
	c, err := m.Get(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.games, c.ID())
	m.mu.Unlock()

	c.Close()
	return nil
}

// Len returns the number of running games.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.games)
}

// CloseAll stops all games.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	games := m.games
	m.games = make(map[uuid.UUID]*Controller)
	m.mu.Unlock()

	for _, c := range games {
		c.Close()
	}
}
