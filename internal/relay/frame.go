package relay

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rubyruby/relay/internal/models"
)

// frameTypeMessage is the only inbound frame type the relay handles.
const frameTypeMessage = "message"

// Inbound is a validated client frame. Sender is deliberately absent: the
// sender is always the session's authenticated identity, never a field the
// peer controls.
type Inbound struct {
	TargetType models.TargetType
	Target     string
	Text       string
}

// inboundFrame is the raw wire shape. Target is a json.RawMessage because
// clients send group ids both as numbers and as strings; Text is a pointer
// so a missing field can be told apart from an empty string (empty is
// accepted, missing is not).
type inboundFrame struct {
	Type       string          `json:"type"`
	TargetType string          `json:"target_type"`
	Target     json.RawMessage `json:"target"`
	Text       *string         `json:"text"`
}

// ParseInbound validates a raw frame. Any failure returns
// ErrMalformedFrame wrapped with the reason; callers drop the frame
// silently either way, the detail is only for debug logs.
func ParseInbound(raw []byte) (*Inbound, error) {
	var f inboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if f.Type != frameTypeMessage {
		return nil, fmt.Errorf("%w: type %q", ErrMalformedFrame, f.Type)
	}
	tt := models.TargetType(f.TargetType)
	if !tt.Valid() {
		return nil, fmt.Errorf("%w: target_type %q", ErrMalformedFrame, f.TargetType)
	}
	target := normalizeTarget(f.Target)
	if target == "" {
		return nil, fmt.Errorf("%w: missing target", ErrMalformedFrame)
	}
	if f.Text == nil {
		return nil, fmt.Errorf("%w: missing text", ErrMalformedFrame)
	}

	return &Inbound{
		TargetType: tt,
		Target:     target,
		Text:       *f.Text,
	}, nil
}

// normalizeTarget renders the target as a plain string whether the client
// sent "7", 7, or "bob".
func normalizeTarget(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Outbound is the delivery frame pushed to each recipient's live endpoint.
type Outbound struct {
	Type       string            `json:"type"`
	From       string            `json:"from"`
	To         string            `json:"to"`
	Text       string            `json:"text"`
	TargetType models.TargetType `json:"target_type"`
}

// NewOutbound builds the delivery frame for a stored message.
func NewOutbound(msg *models.Message) Outbound {
	return Outbound{
		Type:       frameTypeMessage,
		From:       msg.Sender,
		To:         msg.Target,
		Text:       msg.Text,
		TargetType: msg.TargetType,
	}
}
