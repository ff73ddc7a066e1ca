package registration

import (
	"context"
	"errors"
	"strings"

	"github.com/example/accessbot/internal/database"
	"github.com/example/accessbot/pkg/models"
)

// UserStore is the part of the user repository the workflow needs.
type UserStore interface {
	BindPhone(ctx context.Context, userID, phone int64) error
	RebindPhone(ctx context.Context, userID, phone int64) error
	Activate(ctx context.Context, userID int64) error
}

// WhitelistStore looks up authorized phone numbers.
type WhitelistStore interface {
	Get(ctx context.Context, phone int64) (*models.PhoneWhiteList, error)
}

// GroupStore resolves the currently managed group.
type GroupStore interface {
	Target(ctx context.Context) (*models.TelegramGroup, error)
}

// Outcome is the result of a registration step, rendered by the caller.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeNotWhitelisted
	OutcomeRegistered
	OutcomeConflict
	OutcomeKeptPrevious
	OutcomeInvalidAnswer
)

// Answers expected in the conflict-resolution step.
const (
	AnswerYes = "Да"
	AnswerNo  = "Нет"
)

// Workflow drives the agreement -> phone -> conflict registration
// state machine. All store access goes through the injected interfaces.
type Workflow struct {
	users    UserStore
	phones   WhitelistStore
	sessions *SessionStore
}

// NewWorkflow creates a workflow over the given stores.
func NewWorkflow(users UserStore, phones WhitelistStore, sessions *SessionStore) *Workflow {
	return &Workflow{users: users, phones: phones, sessions: sessions}
}

// Session exposes the user's current session to the transport layer.
func (w *Workflow) Session(userID int64) (Session, bool) {
	return w.sessions.Get(userID)
}

// Begin puts the user into the agreement step.
func (w *Workflow) Begin(userID int64) {
	w.sessions.Put(userID, StateAwaitingAgreement, 0)
}

// AwaitContact records that the user consented in words but has not
// shared a contact yet.
func (w *Workflow) AwaitContact(userID int64) {
	w.sessions.Put(userID, StateAwaitingPhone, 0)
}

// Decline terminates the dialog after the user refused the agreement.
func (w *Workflow) Decline(userID int64) {
	w.sessions.Clear(userID)
}

// Cancel clears any in-progress dialog. Returns whether one existed.
func (w *Workflow) Cancel(userID int64) bool {
	return w.sessions.Clear(userID)
}

// SubmitPhone handles a shared contact. The phone is normalized, looked
// up in the whitelist and bound to the user on success. A phone bound
// to a different account moves the dialog into the conflict step; so
// does losing a binding race, since the store's uniqueness constraint
// is the authoritative conflict signal.
func (w *Workflow) SubmitPhone(ctx context.Context, userID int64, rawPhone string) (Outcome, error) {
	phone, ok := models.NormalizePhone(rawPhone)
	if !ok {
		w.sessions.Clear(userID)
		return OutcomeNotWhitelisted, nil
	}

	entry, err := w.phones.Get(ctx, phone)
	if errors.Is(err, database.ErrNotFound) {
		w.sessions.Clear(userID)
		return OutcomeNotWhitelisted, nil
	}
	if err != nil {
		return OutcomeNone, err
	}

	if entry.UserID != nil && *entry.UserID != userID {
		w.sessions.Put(userID, StateAwaitingConflict, phone)
		return OutcomeConflict, nil
	}

	if err := w.register(ctx, userID, phone); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			w.sessions.Put(userID, StateAwaitingConflict, phone)
			return OutcomeConflict, nil
		}
		return OutcomeNone, err
	}

	w.sessions.Clear(userID)
	return OutcomeRegistered, nil
}

// ResolveConflict handles the yes/no answer in the conflict step. Any
// other answer keeps the session so the user can try again; abandoned
// sessions are reclaimed by the stale-session purge.
func (w *Workflow) ResolveConflict(ctx context.Context, userID int64, answer string) (Outcome, error) {
	sess, ok := w.sessions.Get(userID)
	if !ok || sess.State != StateAwaitingConflict {
		return OutcomeNone, nil
	}

	switch {
	case strings.EqualFold(strings.TrimSpace(answer), AnswerYes):
		if err := w.users.RebindPhone(ctx, userID, sess.PendingPhone); err != nil {
			return OutcomeNone, err
		}
		if err := w.users.Activate(ctx, userID); err != nil {
			return OutcomeNone, err
		}
		w.sessions.Clear(userID)
		return OutcomeRegistered, nil

	case strings.EqualFold(strings.TrimSpace(answer), AnswerNo):
		w.sessions.Clear(userID)
		return OutcomeKeptPrevious, nil

	default:
		w.sessions.Touch(userID)
		return OutcomeInvalidAnswer, nil
	}
}

func (w *Workflow) register(ctx context.Context, userID, phone int64) error {
	if err := w.users.BindPhone(ctx, userID, phone); err != nil {
		return err
	}
	return w.users.Activate(ctx, userID)
}
