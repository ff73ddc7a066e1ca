package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/accessbot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, phone_id, is_admin, is_active, registered_at, updated_at"

// GetByID returns a user by their Telegram ID or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return &user, nil
}

// Create inserts a new user with default flags. If the user already
// exists, the existing record is returned instead of an error.
func (r *UserRepository) Create(ctx context.Context, id int64) (*models.User, error) {
	query := r.db.Rebind("INSERT INTO users (id) VALUES (?) ON CONFLICT (id) DO NOTHING")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return nil, fmt.Errorf("failed to create user %d: %w", id, err)
	}

	return r.GetByID(ctx, id)
}

// List returns all registered users
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY registered_at")
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// Activate marks a user as eligible for group access.
func (r *UserRepository) Activate(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, "is_active", true)
}

// Deactivate revokes a user's group access eligibility.
func (r *UserRepository) Deactivate(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, "is_active", false)
}

// GrantAdmin gives a user administrative privileges.
func (r *UserRepository) GrantAdmin(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, "is_admin", true)
}

// RevokeAdmin removes a user's administrative privileges.
func (r *UserRepository) RevokeAdmin(ctx context.Context, id int64) error {
	return r.setFlag(ctx, id, "is_admin", false)
}

func (r *UserRepository) setFlag(ctx context.Context, id int64, column string, value bool) error {
	query := r.db.Rebind(
		"UPDATE users SET " + column + " = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?")

	result, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("failed to update %s for user %d: %w", column, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// IsActive reports whether a user may join the target group.
// Unknown users yield ErrNotFound.
func (r *UserRepository) IsActive(ctx context.Context, id int64) (bool, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsActive, nil
}

// IsAdmin reports whether a user has administrative privileges.
// Unknown users are simply not admins, no error is raised.
func (r *UserRepository) IsAdmin(ctx context.Context, id int64) (bool, error) {
	user, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// Delete removes a user record.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM users WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// BindPhone links a whitelisted phone to a user, creating the user if
// needed. Returns ErrNotFound if the phone is not whitelisted and
// ErrDuplicateKey if the phone is already bound to another user. The
// uniqueness constraint on users.phone_id is the final arbiter for
// concurrent bindings.
func (r *UserRepository) BindPhone(ctx context.Context, userID, phone int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bindPhoneTx(ctx, tx, userID, phone); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("phone %d: %w", phone, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to commit phone binding: %w", err)
	}
	return nil
}

// RebindPhone binds a phone to a user, releasing any previous holder of
// the same phone first. Used for the explicit conflict override.
func (r *UserRepository) RebindPhone(ctx context.Context, userID, phone int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	release := tx.Rebind(
		"UPDATE users SET phone_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE phone_id = ?")
	if _, err := tx.ExecContext(ctx, release, phone); err != nil {
		return fmt.Errorf("failed to release phone %d: %w", phone, err)
	}

	if err := bindPhoneTx(ctx, tx, userID, phone); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit phone rebinding: %w", err)
	}
	return nil
}

func bindPhoneTx(ctx context.Context, tx *sqlx.Tx, userID, phone int64) error {
	var present int
	check := tx.Rebind("SELECT COUNT(*) FROM phone_whitelist WHERE phone = ?")
	if err := tx.GetContext(ctx, &present, check, phone); err != nil {
		return fmt.Errorf("failed to look up phone %d: %w", phone, err)
	}
	if present == 0 {
		return fmt.Errorf("phone %d is not whitelisted: %w", phone, ErrNotFound)
	}

	create := tx.Rebind("INSERT INTO users (id) VALUES (?) ON CONFLICT (id) DO NOTHING")
	if _, err := tx.ExecContext(ctx, create, userID); err != nil {
		return fmt.Errorf("failed to create user %d: %w", userID, err)
	}

	bind := tx.Rebind(
		"UPDATE users SET phone_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?")
	if _, err := tx.ExecContext(ctx, bind, phone, userID); err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("phone %d: %w", phone, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to bind phone %d to user %d: %w", phone, userID, err)
	}
	return nil
}
