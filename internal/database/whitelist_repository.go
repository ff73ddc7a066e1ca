package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/accessbot/pkg/models"
)

// WhitelistRepository handles database operations for the phone whitelist
type WhitelistRepository struct {
	db *sqlx.DB
}

// NewWhitelistRepository creates a new repository instance
func NewWhitelistRepository(db *sqlx.DB) *WhitelistRepository {
	return &WhitelistRepository{db: db}
}

// Get returns a whitelist entry together with the id of the user bound
// to it, if any. Returns ErrNotFound for unknown phones.
func (r *WhitelistRepository) Get(ctx context.Context, phone int64) (*models.PhoneWhiteList, error) {
	var entry models.PhoneWhiteList
	query := r.db.Rebind(`
		SELECT p.phone, u.id AS user_id
		FROM phone_whitelist p
		LEFT JOIN users u ON u.phone_id = p.phone
		WHERE p.phone = ?`)

	err := r.db.GetContext(ctx, &entry, query, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("phone %d: %w", phone, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phone %d: %w", phone, err)
	}

	return &entry, nil
}

// Add inserts a phone into the whitelist. Numbers outside the mobile
// range are rejected with ErrInvalidPhone; an already present phone
// yields ErrDuplicateKey.
func (r *WhitelistRepository) Add(ctx context.Context, phone int64) error {
	if phone <= models.PhoneMin || phone >= models.PhoneMax {
		return fmt.Errorf("phone %d: %w", phone, ErrInvalidPhone)
	}

	query := r.db.Rebind("INSERT INTO phone_whitelist (phone) VALUES (?)")
	if _, err := r.db.ExecContext(ctx, query, phone); err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("phone %d: %w", phone, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to add phone %d: %w", phone, err)
	}
	return nil
}
