package session

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/ports"
)

// Manager tracks the live sessions by table ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	resolver    ports.AssetResolver
	newRNG      func() domain.RNG
	settleDelay time.Duration
	shuffleAnim time.Duration
	logger      *slog.Logger
}

func NewManager(resolver ports.AssetResolver, newRNG func() domain.RNG, settleDelay, shuffleAnim time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		resolver:    resolver,
		newRNG:      newRNG,
		settleDelay: settleDelay,
		shuffleAnim: shuffleAnim,
		logger:      logger,
	}
}

// Create deals a new table and starts its loop.
func (m *Manager) Create(style domain.Style, filter domain.Filter) *Session {
	s := New(newTableID(), style, filter, m.newRNG(), m.resolver, m.settleDelay, m.shuffleAnim, m.logger)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	go s.Run()
	return s
}

// Get returns the session for a table ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Shutdown stops every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Stop()
		delete(m.sessions, id)
	}
}

func newTableID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
