package storage

import "context"

// GetOrCreateOwner finds or creates an owner by login name. Returns the
// owner ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateOwner(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO owners (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), owners.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}
