package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vitalsink/vitalsink/internal/models"
)

// GetProfile retrieves the owner's profile. Returns (nil, nil) when none
// has been stored; scoring then falls back to adult defaults.
func (db *DB) GetProfile(ctx context.Context, ownerID int) (*models.Profile, error) {
	var p models.Profile
	err := db.Pool.QueryRow(ctx, `
		SELECT owner_id, birth_date, gender
		FROM profiles
		WHERE owner_id = $1
	`, ownerID).Scan(&p.OwnerID, &p.BirthDate, &p.Gender)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile stores the owner's demographic data, overwriting any
// previous values.
func (db *DB) UpsertProfile(ctx context.Context, p models.Profile) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO profiles (owner_id, birth_date, gender)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE SET
			birth_date = EXCLUDED.birth_date,
			gender = EXCLUDED.gender
	`, p.OwnerID, p.BirthDate, p.Gender)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
