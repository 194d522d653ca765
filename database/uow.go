package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// WithTransaction runs fn inside a single transaction: commit on normal
// return, rollback and re-propagate on any error. Normalization writes made
// by fn never persist unless the whole unit of work succeeds.
func WithTransaction(db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
