package relay

import (
	"context"
	"strconv"

	"github.com/rubyruby/relay/internal/models"
	"go.uber.org/zap"
)

// MessageLog is the slice of the message store the router needs: persist
// one message, server-assigned id and timestamp.
type MessageLog interface {
	Append(ctx context.Context, sender string, targetType models.TargetType, target, text string) (*models.Message, error)
}

// Directory is the router's read-only view of group membership.
type Directory interface {
	Members(ctx context.Context, groupID int64) ([]string, error)
}

// Router turns one inbound frame into a stored message plus best-effort
// pushes to whoever is connected. It keeps no state of its own between
// messages — everything it needs lives in the store, the directory and
// the registry.
//
// The failure policy is silent by contract: malformed frames, storage
// failures and dead recipients all result in the event (or that
// recipient's delivery) being dropped with a log line. The sender is never
// told.
type Router struct {
	store     MessageLog
	directory Directory
	registry  *Registry
	logger    *zap.Logger
}

func NewRouter(store MessageLog, directory Directory, registry *Registry, logger *zap.Logger) *Router {
	return &Router{
		store:     store,
		directory: directory,
		registry:  registry,
		logger:    logger,
	}
}

// HandleInbound processes one raw frame from sender's session. Store
// first, deliver after: the message is persisted even when nobody is
// currently reachable, and a failed push never rolls the row back.
func (rt *Router) HandleInbound(ctx context.Context, sender string, raw []byte) {
	in, err := ParseInbound(raw)
	if err != nil {
		rt.logger.Debug("dropping malformed frame",
			zap.String("sender", sender),
			zap.Error(err),
		)
		return
	}

	// Sender comes from the session, never from the payload, so an
	// authenticated peer cannot impersonate anyone.
	msg, err := rt.store.Append(ctx, sender, in.TargetType, in.Target, in.Text)
	if err != nil {
		// Dropped, no retry, no notice to the sender.
		rt.logger.Error("append failed, dropping message",
			zap.String("sender", sender),
			zap.String("target", in.Target),
			zap.Error(err),
		)
		return
	}

	recipients := rt.resolve(ctx, msg)
	rt.deliver(msg, recipients)
}

// resolve expands the target into the recipient set: the single user for
// a direct message, the current membership snapshot for a group. The
// sender is not excluded — a group sender who is a member gets their own
// message back, and client-side echo is not the router's concern either
// way.
func (rt *Router) resolve(ctx context.Context, msg *models.Message) []string {
	if msg.TargetType == models.TargetUser {
		return []string{msg.Target}
	}

	groupID, err := strconv.ParseInt(msg.Target, 10, 64)
	if err != nil {
		rt.logger.Warn("group target is not an id, delivering to nobody",
			zap.String("target", msg.Target),
		)
		return nil
	}
	members, err := rt.directory.Members(ctx, groupID)
	if err != nil {
		// The message is already stored; recipients can still read it
		// from history once the directory recovers.
		rt.logger.Error("membership lookup failed, delivering to nobody",
			zap.Int64("group_id", groupID),
			zap.Error(err),
		)
		return nil
	}
	return members
}

// deliver pushes the frame to each recipient that has a live endpoint.
// Offline recipients are skipped, and one recipient's transport failure
// never affects the others.
func (rt *Router) deliver(msg *models.Message, recipients []string) {
	frame := NewOutbound(msg)
	for _, recipient := range recipients {
		ep, ok := rt.registry.Lookup(recipient)
		if !ok {
			continue
		}
		if err := ep.Send(frame); err != nil {
			rt.logger.Warn("delivery push failed",
				zap.String("recipient", recipient),
				zap.Int64("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}
}
