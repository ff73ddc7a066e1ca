package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/accessbot/pkg/models"
)

// GroupRepository handles database operations for registered chats
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new repository instance
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Add registers a chat the bot has been added to. Re-adding a known
// chat is a no-op.
func (r *GroupRepository) Add(ctx context.Context, id int64) error {
	query := r.db.Rebind("INSERT INTO telegram_groups (id) VALUES (?) ON CONFLICT (id) DO NOTHING")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to add group %d: %w", id, err)
	}
	return nil
}

// Remove deletes a chat record, typically when the bot is kicked.
func (r *GroupRepository) Remove(ctx context.Context, id int64) error {
	query := r.db.Rebind("DELETE FROM telegram_groups WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to remove group %d: %w", id, err)
	}
	return nil
}

// List returns all chats the bot has been added to.
func (r *GroupRepository) List(ctx context.Context) ([]models.TelegramGroup, error) {
	groups := []models.TelegramGroup{}
	err := r.db.SelectContext(ctx, &groups, "SELECT id, is_target FROM telegram_groups ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// Target returns the single group currently under management.
// No target yields ErrNotFound; more than one is a data-integrity
// violation, not a valid state.
func (r *GroupRepository) Target(ctx context.Context) (*models.TelegramGroup, error) {
	targets := []models.TelegramGroup{}
	err := r.db.SelectContext(ctx, &targets, "SELECT id, is_target FROM telegram_groups WHERE is_target")
	if err != nil {
		return nil, fmt.Errorf("failed to get target group: %w", err)
	}

	switch len(targets) {
	case 0:
		return nil, fmt.Errorf("target group: %w", ErrNotFound)
	case 1:
		return &targets[0], nil
	default:
		return nil, fmt.Errorf("data integrity violation: %d groups flagged as target", len(targets))
	}
}

// SetTarget makes the given chat the managed group, clearing the flag on
// every previously targeted chat in the same transaction. Returns
// ErrNotFound for unknown ids.
func (r *GroupRepository) SetTarget(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE telegram_groups SET is_target = FALSE WHERE is_target"); err != nil {
		return fmt.Errorf("failed to clear previous target: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		tx.Rebind("UPDATE telegram_groups SET is_target = TRUE WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to set target group %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check target update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("group %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit target change: %w", err)
	}
	return nil
}
