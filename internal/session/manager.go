package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
)

// Manager owns the sessions for a fleet of TVs.
//
// Every device is managed independently: fleet-wide operations call
// each session in turn with no cross-session ordering guarantee.
//
// Thread Safety: all methods are safe for concurrent use.
type Manager struct {
	bus       *Bus
	timing    Timing
	newClient ClientFactory
	wake      WakeFunc

	sessions map[string]*Session
	mu       sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// ManagerOptions holds configuration for creating a manager.
type ManagerOptions struct {
	// Bus receives events from every session. Optional.
	Bus *Bus

	// Logger is optional structured logger, propagated to sessions.
	Logger Logger

	// Timing overrides session timing. Zero fields keep defaults.
	Timing Timing

	// NewClient overrides the device client factory. Optional.
	NewClient ClientFactory

	// Wake overrides the wake-packet sender. Optional.
	Wake WakeFunc
}

// NewManager creates an empty session manager.
func NewManager(opts ManagerOptions) *Manager {
	return &Manager{
		bus:       opts.Bus,
		timing:    opts.Timing,
		newClient: opts.NewClient,
		wake:      opts.Wake,
		sessions:  make(map[string]*Session),
		logger:    opts.Logger,
	}
}

// Bus returns the event bus shared by all sessions.
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Ensure returns the session for a TV, creating it if absent. An
// existing session has its configuration refreshed instead.
func (m *Manager) Ensure(tv device.TV) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[tv.ID]; ok {
		existing.UpdateConfig(tv)
		return existing, nil
	}

	s, err := NewSession(SessionOptions{
		TV:        tv,
		Bus:       m.bus,
		Logger:    m.currentLogger(),
		Timing:    m.timing,
		NewClient: m.newClient,
		Wake:      m.wake,
	})
	if err != nil {
		return nil, fmt.Errorf("creating session for %q: %w", tv.ID, err)
	}

	m.sessions[tv.ID] = s
	m.logInfo("session created", "device_id", tv.ID, "name", tv.Name)

	return s, nil
}

// Get returns the session for a device ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no session for device %q", id)
	}
	return s, nil
}

// All returns every session, sorted by device ID.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID() < sessions[j].ID() })

	return sessions
}

// Count returns the number of managed sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Remove closes and discards a device's session. No-op for unknown IDs.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		m.logInfo("session removed", "device_id", id)
	}
}

// ConnectAll starts a connect attempt on every session.
func (m *Manager) ConnectAll() {
	for _, s := range m.All() {
		s.Connect()
	}
}

// DisconnectAll stops polling and disconnects every session.
func (m *Manager) DisconnectAll() {
	for _, s := range m.All() {
		s.Disconnect(false)
	}
}

// Close releases every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// SetLogger sets the logger for manager operations. Existing
// sessions are updated too.
func (m *Manager) SetLogger(logger Logger) {
	m.loggerMu.Lock()
	m.logger = logger
	m.loggerMu.Unlock()

	for _, s := range m.All() {
		s.SetLogger(logger)
	}
}

func (m *Manager) currentLogger() Logger {
	m.loggerMu.RLock()
	defer m.loggerMu.RUnlock()
	return m.logger
}

// logInfo logs an info message if logger is set.
func (m *Manager) logInfo(msg string, keysAndValues ...any) {
	logger := m.currentLogger()
	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}
