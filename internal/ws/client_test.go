package ws

import (
	"encoding/json"
	"testing"

	"github.com/rubyruby/relay/internal/models"
	"github.com/rubyruby/relay/internal/relay"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientSend_Enqueues(t *testing.T) {
	c := newClient("bob", nil, zap.NewNop())

	err := c.Send(relay.Outbound{
		Type:       "message",
		From:       "ana",
		To:         "bob",
		Text:       "oi",
		TargetType: models.TargetUser,
	})
	require.NoError(t, err)

	select {
	case payload := <-c.send:
		var frame relay.Outbound
		require.NoError(t, json.Unmarshal(payload, &frame))
		require.Equal(t, "ana", frame.From)
		require.Equal(t, "oi", frame.Text)
	default:
		t.Fatal("no frame enqueued")
	}
}

func TestClientSend_BufferFull(t *testing.T) {
	c := newClient("bob", nil, zap.NewNop())

	frame := relay.Outbound{Type: "message", From: "ana", To: "bob", TargetType: models.TargetUser}
	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, c.Send(frame))
	}

	err := c.Send(frame)
	require.ErrorIs(t, err, relay.ErrSendBufferFull)
}

func TestClientSend_AfterClose(t *testing.T) {
	c := newClient("bob", nil, zap.NewNop())

	// Mark the endpoint terminated without a real socket behind it.
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	err := c.Send(relay.Outbound{Type: "message", From: "ana", To: "bob", TargetType: models.TargetUser})
	require.ErrorIs(t, err, relay.ErrEndpointClosed)
}
