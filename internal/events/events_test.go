package events

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/members/internal/config"
	"github.com/JonMunkholm/members/internal/core"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestPublisher_GoChannelRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := NewGoChannel(discardLogger())
	defer ch.Close()

	msgs, err := ch.Subscribe(ctx, "imports")
	require.NoError(t, err)

	pub := NewPublisher(ch, "imports", discardLogger())
	evt := core.ImportCompleted{
		ImportID:     "abc",
		Entity:       "team",
		TotalRows:    3,
		SuccessCount: 2,
		ErrorCount:   1,
		RolledBack:   true,
		Actor:        core.Actor{IP: "10.0.0.1", Source: "http"},
		FinishedAt:   time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, pub.PublishImportCompleted(ctx, evt))

	select {
	case msg := <-msgs:
		msg.Ack()
		assert.Equal(t, EventTypeImportCompleted, msg.Metadata.Get("event_type"))
		assert.Equal(t, "true", msg.Metadata.Get("rolled_back"))

		got, err := Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, evt, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRunAuditLog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := Open(config.EventsConfig{Backend: "gochannel", Topic: "imports"}, discardLogger())
	require.NoError(t, err)
	defer bus.Close()

	out := &syncBuffer{}
	require.NoError(t, RunAuditLog(ctx, bus.Subscriber, bus.Topic, slog.New(slog.NewTextHandler(out, nil))))

	require.NoError(t, bus.EventPublisher().PublishImportCompleted(ctx, core.ImportCompleted{ImportID: "run-1", Entity: "skill"}))

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "import_id=run-1")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOpen(t *testing.T) {
	bus, err := Open(config.EventsConfig{Backend: "none"}, nil)
	require.NoError(t, err)
	assert.Nil(t, bus.EventPublisher())
	assert.Nil(t, bus.Subscriber)
	assert.NoError(t, bus.Close())

	_, err = Open(config.EventsConfig{Backend: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
