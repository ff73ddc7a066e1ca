package registration

import (
	"context"
	"errors"

	"github.com/example/accessbot/internal/database"
)

var (
	// ErrRestrictedAccess means the requester is unknown or inactive.
	// Callers convert it to a polite rejection, never propagate it.
	ErrRestrictedAccess = errors.New("restricted access")
	// ErrNotTarget means the chat is not the managed group and the
	// request should be ignored.
	ErrNotTarget = errors.New("chat is not the managed group")
)

// ActivityStore checks whether a user is eligible for group access.
type ActivityStore interface {
	IsActive(ctx context.Context, userID int64) (bool, error)
}

// Gatekeeper decides whether join requests for the managed group may be
// approved.
type Gatekeeper struct {
	users  ActivityStore
	groups GroupStore
}

// NewGatekeeper creates a gatekeeper over the given stores.
func NewGatekeeper(users ActivityStore, groups GroupStore) *Gatekeeper {
	return &Gatekeeper{users: users, groups: groups}
}

// Admit returns nil when a join request from userID for chatID should
// be approved. ErrNotTarget flags requests for chats the bot does not
// manage; ErrRestrictedAccess flags unknown or inactive requesters.
func (g *Gatekeeper) Admit(ctx context.Context, chatID, userID int64) error {
	target, err := g.groups.Target(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return ErrNotTarget
	}
	if err != nil {
		return err
	}
	if target.ID != chatID {
		return ErrNotTarget
	}

	active, err := g.users.IsActive(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrRestrictedAccess
	}
	if err != nil {
		return err
	}
	if !active {
		return ErrRestrictedAccess
	}

	return nil
}
