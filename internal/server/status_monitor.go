package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/finlit/finlit/internal/events"
	"github.com/rs/zerolog"
)

// HealthChecker is a store that can verify its own integrity
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StatusEmitter publishes typed events
type StatusEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// StatusMonitor periodically checks database health and emits an event when it changes
type StatusMonitor struct {
	emitter   StatusEmitter
	databases map[string]HealthChecker
	log       zerolog.Logger

	mu          sync.Mutex
	initialized bool
	lastHealthy bool
	lastBad     []string

	stop chan struct{}
	once sync.Once
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(emitter StatusEmitter, databases map[string]HealthChecker, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		emitter:   emitter,
		databases: databases,
		log:       log.With().Str("component", "status_monitor").Logger(),
		stop:      make(chan struct{}),
	}
}

// Start begins periodic status monitoring
func (m *StatusMonitor) Start(interval time.Duration) {
	go m.monitor(interval)
}

// Stop ends monitoring
func (m *StatusMonitor) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *StatusMonitor) monitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.checkStatuses(context.Background())

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.checkStatuses(context.Background())
		}
	}
}

// checkStatuses runs every health check and emits when the set of failing databases changes
func (m *StatusMonitor) checkStatuses(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var bad []string
	for name, db := range m.databases {
		if err := db.HealthCheck(ctx); err != nil {
			m.log.Warn().Err(err).Str("database", name).Msg("Database health check failed")
			bad = append(bad, name)
		}
	}
	sort.Strings(bad)
	healthy := len(bad) == 0

	m.mu.Lock()
	changed := !m.initialized || healthy != m.lastHealthy || !equalNames(bad, m.lastBad)
	m.initialized = true
	m.lastHealthy = healthy
	m.lastBad = bad
	m.mu.Unlock()

	if changed && m.emitter != nil {
		m.emitter.EmitTyped("status_monitor", &events.SystemStatusData{
			Healthy:   healthy,
			Unhealthy: bad,
		})
	}
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
