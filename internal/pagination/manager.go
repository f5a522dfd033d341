package pagination

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/guildstats/recordbot/internal/models"
)

// DefaultTimeout is how long a session stays navigable without interaction
const DefaultTimeout = 60 * time.Second

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("pagination session not found or expired")

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recordbot_pagination_sessions_active",
		Help: "Number of navigable leaderboard sessions",
	})

	navigations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recordbot_pagination_navigations_total",
		Help: "Navigation requests by direction and result (moved, noop, expired)",
	}, []string{"direction", "result"})
)

// ManagerConfig configures session expiry
type ManagerConfig struct {
	Timeout time.Duration
	// OnExpire runs on the timer goroutine after a session expires
	OnExpire func(*Session)
	Logger   *zap.Logger
}

type entry struct {
	session *Session
	timer   *time.Timer
}

// Manager tracks live sessions and expires each one after Timeout of inactivity
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	timeout  time.Duration
	onExpire func(*Session)
	logger   *zap.SugaredLogger
	closed   bool
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*entry),
		timeout:  cfg.Timeout,
		onExpire: cfg.OnExpire,
		logger:   cfg.Logger.Sugar(),
	}
}

// Open starts a session over pages and arms its inactivity timer
func (m *Manager) Open(pages []models.Page) (*Session, error) {
	s, err := NewSession(uuid.NewString(), pages)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("pagination manager closed")
	}

	e := &entry{session: s}
	e.timer = time.AfterFunc(m.timeout, func() { m.expire(s.ID, e) })
	m.sessions[s.ID] = e
	activeSessions.Inc()

	m.logger.Debugw("Pagination session opened", "session", s.ID, "pages", s.PageCount())
	return s, nil
}

// Navigate applies dir to the session and restarts its inactivity timer.
// The returned page is the one to display; changed is false for a no-op.
func (m *Manager) Navigate(id string, dir Direction) (models.Page, bool, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		e.timer.Reset(m.timeout)
	}
	m.mu.Unlock()

	if !ok {
		navigations.WithLabelValues(dir.String(), "expired").Inc()
		return models.Page{}, false, ErrSessionNotFound
	}

	page, moved := e.session.Move(dir)
	switch {
	case moved:
		navigations.WithLabelValues(dir.String(), "moved").Inc()
	case e.session.Expired():
		navigations.WithLabelValues(dir.String(), "expired").Inc()
		return page, false, ErrSessionNotFound
	default:
		navigations.WithLabelValues(dir.String(), "noop").Inc()
	}
	return page, moved, nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expire(id string, e *entry) {
	m.mu.Lock()
	current, ok := m.sessions[id]
	if !ok || current != e {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	if !e.session.Expire() {
		return
	}
	activeSessions.Dec()
	m.logger.Debugw("Pagination session expired", "session", id)

	if m.onExpire != nil {
		m.onExpire(e.session)
	}
}

// Close stops every timer and expires all sessions without running OnExpire
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, e := range m.sessions {
		e.timer.Stop()
		if e.session.Expire() {
			activeSessions.Dec()
		}
		delete(m.sessions, id)
	}
}
