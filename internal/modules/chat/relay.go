// Package chat relays user questions to a hosted text generator and keeps per-conversation transcripts.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Greeting opens every conversation
	Greeting = "Hi! I'm your AI financial assistant. How can I help you today?"
	// Apology is appended when the generator fails
	Apology = "Sorry, I couldn't process your request. Please try again."
	// MaxReplyLines caps the length of a relayed reply
	MaxReplyLines = 8

	advisorFraming = "You are a friendly financial advisor helping a beginner learn about personal finance. " +
		"Answer clearly and briefly in plain language.\n\nQuestion: "
)

// TextGenerator produces a completion for a single-turn prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EventEmitter publishes typed events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Role identifies who wrote a message
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one transcript entry
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is a snapshot of a conversation
type Transcript struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	Pending   bool      `json:"pending"`
	UpdatedAt time.Time `json:"updated_at"`
}

type conversation struct {
	mu        sync.Mutex
	id        string
	messages  []Message
	inFlight  bool
	updatedAt time.Time
}

func (c *conversation) snapshot() Transcript {
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return Transcript{ID: c.id, Messages: msgs, Pending: c.inFlight, UpdatedAt: c.updatedAt}
}

// Config tunes the relay
type Config struct {
	Timeout        time.Duration
	AdvisorFraming bool
}

// Relay forwards messages to the generator, one request in flight per conversation
type Relay struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
	generator     TextGenerator
	cfg           Config
	emitter       EventEmitter
	now           func() time.Time
	log           zerolog.Logger
}

// NewRelay creates a chat relay. emitter may be nil.
func NewRelay(generator TextGenerator, cfg Config, emitter EventEmitter, log zerolog.Logger) *Relay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Relay{
		conversations: make(map[string]*conversation),
		generator:     generator,
		cfg:           cfg,
		emitter:       emitter,
		now:           time.Now,
		log:           log.With().Str("service", "chat").Logger(),
	}
}

// Start opens a conversation seeded with the greeting
func (r *Relay) Start() Transcript {
	now := r.now()
	c := &conversation{
		id:        uuid.New().String(),
		messages:  []Message{r.message(RoleAssistant, Greeting, false)},
		updatedAt: now,
	}

	r.mu.Lock()
	r.conversations[c.id] = c
	r.mu.Unlock()

	return c.snapshot()
}

// Get returns the current transcript of a conversation
func (r *Relay) Get(id string) (*Transcript, error) {
	c, err := r.get(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.snapshot()
	return &t, nil
}

// SendMessage appends the user's text, asks the generator and appends its reply truncated
// to MaxReplyLines. While a request is in flight further submissions fail with
// domain.ErrBusy. On generator failure the apology is appended and returned with the error.
func (r *Relay) SendMessage(ctx context.Context, id, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message is empty: %w", domain.ErrInvalidInput)
	}

	c, err := r.get(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, fmt.Errorf("conversation %s is awaiting a reply: %w", id, domain.ErrBusy)
	}
	c.inFlight = true
	c.messages = append(c.messages, r.message(RoleUser, text, false))
	c.updatedAt = r.now()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.updatedAt = r.now()
		c.mu.Unlock()
	}()

	genCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	reply, err := r.generator.Generate(genCtx, r.prompt(text))
	if err != nil {
		r.log.Error().Err(err).Str("conversation_id", id).Msg("Failed to generate reply")
		apology := r.append(c, Apology, true)
		r.emit(&events.ChatData{Type: events.ChatFailed, ConversationID: id, Error: domain.PublicMessage(err)})
		return &apology, err
	}

	msg := r.append(c, Truncate(reply, MaxReplyLines), false)
	r.emit(&events.ChatData{Type: events.ChatReplied, ConversationID: id})
	return &msg, nil
}

// Delete discards a conversation
func (r *Relay) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[id]; !ok {
		return fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	delete(r.conversations, id)
	return nil
}

// PurgeIdle discards conversations untouched for ttl that have no request in flight
func (r *Relay) PurgeIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, c := range r.conversations {
		c.mu.Lock()
		idle := !c.inFlight && c.updatedAt.Before(cutoff)
		c.mu.Unlock()
		if idle {
			delete(r.conversations, id)
			removed++
		}
	}

	if removed > 0 {
		r.log.Info().Int("count", removed).Msg("Purged idle conversations")
	}
	return removed
}

// Len returns the number of open conversations
func (r *Relay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}

// Truncate keeps at most maxLines lines of text
func Truncate(text string, maxLines int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	return strings.TrimRight(strings.Join(lines[:maxLines], "\n"), " \t\n")
}

func (r *Relay) prompt(text string) string {
	if r.cfg.AdvisorFraming {
		return advisorFraming + text
	}
	return text
}

func (r *Relay) get(id string) (*conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (r *Relay) append(c *conversation, text string, failed bool) Message {
	msg := r.message(RoleAssistant, text, failed)

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	return msg
}

func (r *Relay) message(role Role, text string, failed bool) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		Failed:    failed,
		CreatedAt: r.now(),
	}
}

func (r *Relay) emit(data events.EventData) {
	if r.emitter != nil {
		r.emitter.EmitTyped("chat", data)
	}
}
