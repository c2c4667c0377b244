package sqlite

import (
	"database/sql"
	"fmt"
)

// KVRepository implements repository.KeyValueStore for one scope (one browser).
type KVRepository struct {
	db    *DB
	scope string
}

// NewKVRepository creates a key-value repository bound to scope.
func NewKVRepository(db *DB, scope string) *KVRepository {
	return &KVRepository{db: db, scope: scope}
}

// GetItem returns the value stored under key.
func (r *KVRepository) GetItem(key string) (string, bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var value string
	err := r.db.Conn().QueryRow(`
		SELECT value FROM kv_items WHERE scope = ? AND key = ?
	`, r.scope, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get item %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key, overwriting any previous value.
func (r *KVRepository) SetItem(key, value string) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO kv_items (scope, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, r.scope, key, value)
	if err != nil {
		return fmt.Errorf("failed to set item %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (r *KVRepository) RemoveItem(key string) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM kv_items WHERE scope = ? AND key = ?`, r.scope, key); err != nil {
		return fmt.Errorf("failed to remove item %s: %w", key, err)
	}
	return nil
}

// Scopes lists every scope holding at least one key.
func (db *DB) Scopes() ([]string, error) {
	db.RLock()
	defer db.RUnlock()

	rows, err := db.Conn().Query(`SELECT DISTINCT scope FROM kv_items ORDER BY scope`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scopes: %w", err)
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, fmt.Errorf("failed to scan scope: %w", err)
		}
		scopes = append(scopes, scope)
	}
	return scopes, rows.Err()
}
