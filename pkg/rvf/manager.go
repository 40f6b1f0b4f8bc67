package rvf

import (
	"fmt"
	"sync"

	"github.com/rvflabs/rvf-go/pkg/channel"
	"github.com/rvflabs/rvf-go/pkg/internal/logger"
	"github.com/rvflabs/rvf-go/pkg/receiver"
)

// Manager is the root object for RVF capture operations.
// It manages named capture sessions and provides the main API entry
// point.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	logger   logger.Logger
}

// NewManager creates a new manager
func NewManager() *Manager {
	return NewManagerWithLogger(logger.GetDefault())
}

// NewManagerWithLogger creates a new manager with a custom logger
func NewManagerWithLogger(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Manager{
		sessions: make(map[string]*Session),
		logger:   log,
	}
}

// AddSession creates and starts a capture session reading from the
// given channel. The channel is owned by the session from here on.
func (m *Manager) AddSession(name string, ch channel.DatagramChannel, config receiver.ReceiverConfig) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %s already exists", name)
	}

	if config.Logger == nil {
		config.Logger = m.logger
	}

	session := newSession(name, ch, config)
	if err := session.start(); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	m.sessions[name] = session
	m.logger.Info("Manager: Added session %s (%s)", name, session.ID())

	return session, nil
}

// RemoveSession stops and removes a session
func (m *Manager) RemoveSession(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[name]
	if !exists {
		return fmt.Errorf("session %s not found", name)
	}

	session.stop()
	delete(m.sessions, name)
	m.logger.Info("Manager: Removed session %s", name)
	return nil
}

// GetSession returns a session by name
func (m *Manager) GetSession(name string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	return session, exists
}

// Sessions returns all active sessions
func (m *Manager) Sessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Shutdown stops all sessions
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, session := range m.sessions {
		session.stop()
		delete(m.sessions, name)
	}
	m.logger.Info("Manager: Shutdown complete")
}
