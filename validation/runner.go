package validation

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"csrep/database"
)

// Run executes the configured validators in order inside one unit of work.
// The first failure rolls everything back, including normalization writes
// made by earlier validators in the same run, and is returned as the run's
// single error. On success the two permitted mutations (TIN
// canonicalization, conversion-factor assignment) are committed together.
//
// Run is strictly sequential; progress is invoked inline on the calling
// goroutine.
func Run(db *sqlx.DB, names []string, flagColumn, state string, progress Progress) error {
	validators, err := Resolve(names, flagColumn, state)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log.Printf("INFO: starting validation run %s (%d validators)", runID, len(validators))

	err = database.WithTransaction(db, func(tx *sqlx.Tx) error {
		for _, v := range validators {
			progress(v.Name(), 0)
			if err := v.Run(tx, progress); err != nil {
				log.Printf("ERROR: validation run %s failed in %s: %v", runID, v.Name(), err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		var uerr UserError
		if !errors.As(err, &uerr) {
			// Begin/commit failures and anything else the taxonomy does not
			// already cover surface as infrastructure faults.
			return &InfrastructureError{Op: "validation run", Err: err}
		}
		return err
	}

	log.Printf("INFO: validation run %s completed successfully", runID)
	return nil
}
