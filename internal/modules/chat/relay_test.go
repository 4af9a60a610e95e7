package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockEmitter struct {
	mock.Mock
}

func (m *MockEmitter) EmitTyped(module string, data events.EventData) {
	m.Called(module, data)
}

// blockingGenerator holds each call until release is closed
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *blockingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return "done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestStart_Greets(t *testing.T) {
	relay := NewRelay(new(MockGenerator), Config{}, nil, zerolog.Nop())

	transcript := relay.Start()

	require.Len(t, transcript.Messages, 1)
	assert.Equal(t, RoleAssistant, transcript.Messages[0].Role)
	assert.Equal(t, Greeting, transcript.Messages[0].Text)
	assert.False(t, transcript.Pending)
	assert.Equal(t, 1, relay.Len())
}

func TestSendMessage_Reply(t *testing.T) {
	gen := new(MockGenerator)
	emitter := new(MockEmitter)
	gen.On("Generate", mock.Anything, "What is a SIP?").Return("A SIP is a systematic investment plan.", nil)
	emitter.On("EmitTyped", "chat", mock.MatchedBy(func(d events.EventData) bool {
		return d.EventType() == events.ChatReplied
	})).Once()

	relay := NewRelay(gen, Config{}, emitter, zerolog.Nop())
	id := relay.Start().ID

	msg, err := relay.SendMessage(context.Background(), id, "  What is a SIP?  ")
	require.NoError(t, err)
	assert.Equal(t, "A SIP is a systematic investment plan.", msg.Text)
	assert.False(t, msg.Failed)

	transcript, err := relay.Get(id)
	require.NoError(t, err)
	require.Len(t, transcript.Messages, 3)
	assert.Equal(t, RoleUser, transcript.Messages[1].Role)
	assert.Equal(t, "What is a SIP?", transcript.Messages[1].Text)
	assert.Equal(t, RoleAssistant, transcript.Messages[2].Role)
	assert.False(t, transcript.Pending)

	gen.AssertExpectations(t)
	emitter.AssertExpectations(t)
}

func TestSendMessage_AdvisorFraming(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, advisorFraming) && strings.HasSuffix(p, "Should I buy gold?")
	})).Return("Maybe.", nil)

	relay := NewRelay(gen, Config{AdvisorFraming: true}, nil, zerolog.Nop())
	_, err := relay.SendMessage(context.Background(), relay.Start().ID, "Should I buy gold?")
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestSendMessage_TruncatesReply(t *testing.T) {
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(strings.Join(lines, "\n"), nil)

	relay := NewRelay(gen, Config{}, nil, zerolog.Nop())
	msg, err := relay.SendMessage(context.Background(), relay.Start().ID, "tell me everything")
	require.NoError(t, err)

	got := strings.Split(msg.Text, "\n")
	assert.Len(t, got, MaxReplyLines)
	assert.Equal(t, "line 8", got[len(got)-1])
}

func TestSendMessage_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport", fmt.Errorf("generate: %w: Post \"https://host/gen?key=SECRET\"", domain.ErrFetch)},
		{"malformed", fmt.Errorf("generate: %w", domain.ErrMalformedResponse)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			emitter := new(MockEmitter)
			gen.On("Generate", mock.Anything, mock.Anything).Return("", tt.err).Once()
			gen.On("Generate", mock.Anything, mock.Anything).Return("recovered", nil)
			emitter.On("EmitTyped", "chat", mock.MatchedBy(func(d events.EventData) bool {
				data, ok := d.(*events.ChatData)
				return ok && data.Type == events.ChatFailed && data.Error == domain.PublicMessage(tt.err)
			})).Once()

			relay := NewRelay(gen, Config{}, emitter, zerolog.Nop())
			id := relay.Start().ID

			msg, err := relay.SendMessage(context.Background(), id, "hello")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err))
			require.NotNil(t, msg)
			assert.Equal(t, Apology, msg.Text)
			assert.True(t, msg.Failed)

			transcript, _ := relay.Get(id)
			require.Len(t, transcript.Messages, 3)
			assert.Equal(t, Apology, transcript.Messages[2].Text)
			assert.False(t, transcript.Pending)

			emitter.On("EmitTyped", "chat", mock.Anything)
			msg, err = relay.SendMessage(context.Background(), id, "again")
			require.NoError(t, err)
			assert.Equal(t, "recovered", msg.Text)
		})
	}
}

func TestSendMessage_Validation(t *testing.T) {
	relay := NewRelay(new(MockGenerator), Config{}, nil, zerolog.Nop())
	id := relay.Start().ID

	_, err := relay.SendMessage(context.Background(), id, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = relay.SendMessage(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	transcript, _ := relay.Get(id)
	assert.Len(t, transcript.Messages, 1)
}

func TestSendMessage_RejectsWhileInFlight(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}, 1), release: make(chan struct{})}
	relay := NewRelay(gen, Config{Timeout: 5 * time.Second}, nil, zerolog.Nop())
	id := relay.Start().ID

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := relay.SendMessage(context.Background(), id, "first")
		assert.NoError(t, err)
	}()

	<-gen.started
	transcript, _ := relay.Get(id)
	assert.True(t, transcript.Pending)

	_, err := relay.SendMessage(context.Background(), id, "second")
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(gen.release)
	wg.Wait()

	transcript, _ = relay.Get(id)
	assert.False(t, transcript.Pending)
	assert.Len(t, transcript.Messages, 3)
}

func TestSendMessage_Timeout(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{}, 1), release: make(chan struct{})}
	relay := NewRelay(gen, Config{Timeout: 20 * time.Millisecond}, nil, zerolog.Nop())
	id := relay.Start().ID

	msg, err := relay.SendMessage(context.Background(), id, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Apology, msg.Text)
}

func TestPurgeIdle(t *testing.T) {
	relay := NewRelay(new(MockGenerator), Config{}, nil, zerolog.Nop())
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	relay.now = func() time.Time { return base }
	old := relay.Start().ID

	relay.now = func() time.Time { return base.Add(2 * time.Hour) }
	fresh := relay.Start().ID

	assert.Equal(t, 1, relay.PurgeIdle(time.Hour))
	_, err := relay.Get(old)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = relay.Get(fresh)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	relay := NewRelay(new(MockGenerator), Config{}, nil, zerolog.Nop())
	id := relay.Start().ID

	require.NoError(t, relay.Delete(id))
	assert.ErrorIs(t, relay.Delete(id), domain.ErrNotFound)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a\nb", Truncate("a\r\nb\n", 8))
	assert.Equal(t, "a\nb", Truncate("a\nb\nc", 2))
	assert.Equal(t, "", Truncate("  ", 8))
}
