package market

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SessionRecord is the persisted form of a game session
type SessionRecord struct {
	ID        string
	State     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionStore persists game sessions
type SessionStore interface {
	Save(ctx context.Context, rec SessionRecord) error
	Load(ctx context.Context, id string) (*SessionRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// EventEmitter publishes typed events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// View is the client-facing state of a session
type View struct {
	ID          string          `json:"id"`
	Cash        decimal.Decimal `json:"cash"`
	NetWorth    decimal.Decimal `json:"net_worth"`
	Day         int             `json:"day"`
	Instruments []Instrument    `json:"instruments"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	LastEvent   *MarketEvent    `json:"last_event,omitempty"`
}

type session struct {
	mu        sync.Mutex
	id        string
	engine    *Engine
	createdAt time.Time
	updatedAt time.Time
	lastEvent *MarketEvent
	subs      map[uint64]chan View
	nextSub   uint64
	// removed is set under mu once the session is deleted or purged
	removed bool
}

// live fails for sessions already deleted or purged. Caller holds s.mu.
func (s *session) live() error {
	if s.removed {
		return fmt.Errorf("session %s: %w", s.id, domain.ErrNotFound)
	}
	return nil
}

func (s *session) view() View {
	p := s.engine.Portfolio()
	return View{
		ID:          s.id,
		Cash:        p.Cash,
		NetWorth:    p.NetWorth(),
		Day:         p.Day,
		Instruments: p.Instruments,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
		LastEvent:   s.lastEvent,
	}
}

// broadcast drops the update for subscribers that are not keeping up
func (s *session) broadcast(v View) {
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

func (s *session) closeSubscribers() {
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

// Sessions is the registry of live games
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*session
	cfg      Config
	store    SessionStore
	emitter  EventEmitter
	newRand  func() RandomSource
	now      func() time.Time
	log      zerolog.Logger
}

// NewSessions creates a registry. store and emitter may be nil.
func NewSessions(cfg Config, store SessionStore, emitter EventEmitter, log zerolog.Logger) *Sessions {
	return &Sessions{
		sessions: make(map[string]*session),
		cfg:      cfg,
		store:    store,
		emitter:  emitter,
		newRand: func() RandomSource {
			return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
		},
		now: time.Now,
		log: log.With().Str("service", "market_sessions").Logger(),
	}
}

// SetRandomFactory replaces the random source used by new and restored sessions
func (r *Sessions) SetRandomFactory(f func() RandomSource) {
	r.newRand = f
}

// Create starts a new game
func (r *Sessions) Create(ctx context.Context) (*View, error) {
	now := r.now()
	s := &session{
		id:        uuid.New().String(),
		engine:    NewEngine(r.cfg, r.newRand()),
		createdAt: now,
		updatedAt: now,
		subs:      make(map[uint64]chan View),
	}

	if err := r.persist(ctx, s); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	r.emit(&events.SessionData{Type: events.SessionCreated, SessionID: s.id})
	r.log.Info().Str("session_id", s.id).Msg("Game session created")

	v := s.view()
	return &v, nil
}

// Get returns the current state of a session
func (r *Sessions) Get(ctx context.Context, id string) (*View, error) {
	s, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view()
	return &v, nil
}

// Buy spends amount on the instrument within the session
func (r *Sessions) Buy(ctx context.Context, id, instrumentID string, amount float64) (*Trade, *View, error) {
	s, err := r.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.live(); err != nil {
		return nil, nil, err
	}

	trade, err := s.engine.Buy(instrumentID, amount)
	if err != nil {
		return nil, nil, err
	}

	v := r.commit(ctx, s)
	r.emit(&events.TradeExecutedData{
		SessionID:    id,
		InstrumentID: trade.InstrumentID,
		Side:         "BUY",
		Shares:       trade.Shares,
		Price:        trade.Price.InexactFloat64(),
		Cash:         trade.Cash.InexactFloat64(),
	})
	return trade, &v, nil
}

// Sell liquidates the session's position in the instrument
func (r *Sessions) Sell(ctx context.Context, id, instrumentID string) (*SaleResult, *View, error) {
	s, err := r.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.live(); err != nil {
		return nil, nil, err
	}

	sale, err := s.engine.Sell(instrumentID)
	if err != nil {
		return nil, nil, err
	}

	v := r.commit(ctx, s)
	r.emit(&events.TradeExecutedData{
		SessionID:    id,
		InstrumentID: sale.InstrumentID,
		Side:         "SELL",
		Shares:       sale.Shares,
		Price:        sale.Price.InexactFloat64(),
		Cash:         sale.Cash.InexactFloat64(),
	})
	return sale, &v, nil
}

// Advance simulates one trading day
func (r *Sessions) Advance(ctx context.Context, id string) (*DayReport, *View, error) {
	s, err := r.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.live(); err != nil {
		return nil, nil, err
	}

	report := s.engine.AdvanceDay()
	s.lastEvent = report.Event

	v := r.commit(ctx, s)

	data := &events.MarketDayAdvancedData{
		SessionID: id,
		Day:       report.Day,
		NetWorth:  v.NetWorth.InexactFloat64(),
	}
	if report.Event != nil {
		data.Headline = report.Event.Headline
	}
	r.emit(data)

	return &report, &v, nil
}

// Indicators returns technical indicators for an instrument in the session
func (r *Sessions) Indicators(ctx context.Context, id, instrumentID string) (*Indicators, error) {
	s, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.engine.Indicators(instrumentID)
}

// Subscribe streams the session state after every change. The returned cancel
// function must be called to release the subscription.
func (r *Sessions) Subscribe(ctx context.Context, id string) (<-chan View, func(), error) {
	s, err := r.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.live(); err != nil {
		return nil, nil, err
	}

	s.nextSub++
	subID := s.nextSub
	ch := make(chan View, 8)
	s.subs[subID] = ch
	ch <- s.view()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[subID]; ok {
			close(c)
			delete(s.subs, subID)
		}
	}
	return ch, cancel, nil
}

// Delete ends a session
func (r *Sessions) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok && r.store == nil {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	// Retire before touching the store so an in-flight trade cannot re-save it
	if s != nil {
		s.mu.Lock()
		s.removed = true
		s.closeSubscribers()
		s.mu.Unlock()
	}

	if r.store != nil {
		if err := r.store.Delete(ctx, id); err != nil {
			return err
		}
	}

	r.emit(&events.SessionData{Type: events.SessionDeleted, SessionID: id})
	return nil
}

// PurgeIdle removes sessions not updated within ttl and returns how many were removed
func (r *Sessions) PurgeIdle(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		if s.updatedAt.Before(cutoff) {
			s.removed = true
			s.closeSubscribers()
			delete(r.sessions, id)
			removed++
		}
		s.mu.Unlock()
	}
	r.mu.Unlock()

	if r.store != nil {
		count, err := r.store.DeleteIdleBefore(ctx, cutoff)
		if err != nil {
			return removed, err
		}
		removed = count
	}

	if removed > 0 {
		r.emit(&events.SessionsPurgedData{Count: removed})
		r.log.Info().Int("count", removed).Dur("ttl", ttl).Msg("Purged idle game sessions")
	}
	return removed, nil
}

// Len returns the number of sessions held in memory
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Sessions) get(ctx context.Context, id string) (*session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	if r.store == nil {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	rec, err := r.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	engine, err := RestoreEngine(rec.State, r.cfg, r.newRand())
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[id]; ok {
		return existing, nil
	}

	s = &session{
		id:        rec.ID,
		engine:    engine,
		createdAt: rec.CreatedAt,
		updatedAt: rec.UpdatedAt,
		subs:      make(map[uint64]chan View),
	}
	r.sessions[id] = s
	r.log.Debug().Str("session_id", id).Msg("Game session restored")
	return s, nil
}

// commit stamps, persists and broadcasts a mutated session. Caller holds s.mu.
// Removed sessions are never written back.
func (r *Sessions) commit(ctx context.Context, s *session) View {
	s.updatedAt = r.now()
	if s.removed {
		return s.view()
	}
	if err := r.persist(ctx, s); err != nil {
		r.log.Error().Err(err).Str("session_id", s.id).Msg("Failed to persist game session")
	}

	v := s.view()
	s.broadcast(v)
	return v
}

func (r *Sessions) persist(ctx context.Context, s *session) error {
	if r.store == nil {
		return nil
	}

	state, err := s.engine.MarshalState()
	if err != nil {
		return err
	}

	return r.store.Save(ctx, SessionRecord{
		ID:        s.id,
		State:     state,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	})
}

func (r *Sessions) emit(data events.EventData) {
	if r.emitter != nil {
		r.emitter.EmitTyped("market", data)
	}
}
