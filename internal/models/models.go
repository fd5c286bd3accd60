package models

import "time"

// TargetType says whether a message is addressed to a single user or to a
// group. The value travels on the wire and is stored verbatim, so the
// constants below are the only valid values.
type TargetType string

const (
	TargetUser  TargetType = "user"
	TargetGroup TargetType = "group"
)

// Valid reports whether t is one of the two known target types.
func (t TargetType) Valid() bool {
	return t == TargetUser || t == TargetGroup
}

// User is an account in the directory. The username is the identity used
// everywhere else in the system — messages, contacts, group membership and
// live connections are all keyed by it, and it never changes once created.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Contact is one edge of a user's contact list: Owner has added Contact.
// The relation is directional and duplicate adds are no-ops.
type Contact struct {
	Owner   string `json:"owner"`
	Contact string `json:"contact"`
}

// Group is a named chat group. IDs come from a Postgres sequence, so they
// are assigned in creation order and never reused. The name is a display
// string and is not unique.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupMember is the join table between groups and users.
type GroupMember struct {
	GroupID  int64  `json:"group_id"`
	Username string `json:"username"`
}

// Message is one stored chat message.
//
// ID is a bigserial and doubles as the conversation order: history reads
// sort by it, not by CreatedAt, so clock skew can never reorder a
// conversation. Target holds either a username or a group id rendered as a
// string, depending on TargetType. Rows are immutable once inserted.
type Message struct {
	ID         int64      `json:"id"`
	Sender     string     `json:"sender"`
	TargetType TargetType `json:"target_type"`
	Target     string     `json:"target"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"ts"`
}
