package repository

import (
	"context"

	"github.com/rubyruby/relay/internal/models"
)

// Every method takes a context.Context: all of these hit the database, and
// the caller's deadline (usually an HTTP request or a WS session) should be
// able to cancel the query.

// MessageRepository is the durable message log.
type MessageRepository interface {
	// Append persists a message, assigning its id and timestamp
	// server-side, and returns the stored row. The id is the total order
	// for the conversation: concurrent appends never share an id.
	Append(ctx context.Context, sender string, targetType models.TargetType, target, text string) (*models.Message, error)

	// History returns a conversation in ascending id order.
	//
	// For direct conversations the result covers both directions of the
	// (username, target) pair — history(A,B) and history(B,A) are the
	// same list. For groups it is every message addressed to the group,
	// with no membership filter: a user who left still sees prior
	// history. That read-time behavior is intentional and load-bearing.
	History(ctx context.Context, username string, targetType models.TargetType, target string) ([]models.Message, error)
}

// UserRepository is the account directory.
type UserRepository interface {
	// Create inserts a new user. Returns nil, nil if the username is
	// already taken.
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)

	// GetByUsername returns nil, nil when the user does not exist.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// GroupRepository is group membership as seen by both the REST surface
// (create/join/list) and the relay (Members is the fan-out read path).
type GroupRepository interface {
	// Create inserts a group and adds the owner as its first member.
	Create(ctx context.Context, name, owner string) (*models.Group, error)

	// Join adds a user to a group. Idempotent: joining twice is a no-op.
	Join(ctx context.Context, groupID int64, username string) error

	// Members returns the current membership snapshot. No order is
	// guaranteed.
	Members(ctx context.Context, groupID int64) ([]string, error)

	// GroupsOf returns the groups a user belongs to.
	GroupsOf(ctx context.Context, username string) ([]models.Group, error)
}

// ContactRepository is each user's personal contact list.
type ContactRepository interface {
	// Add records that owner has added contact. Idempotent.
	Add(ctx context.Context, owner, contact string) error

	// ListByOwner returns the usernames owner has added.
	ListByOwner(ctx context.Context, owner string) ([]string, error)
}
