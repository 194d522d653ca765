package validation

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedValidRun stages a data set that passes every validator.
func seedValidRun(t *testing.T, db *sqlx.DB) {
	insertWarehouse(t, db, "RW1234567", "12-3456789", "Acme Corp", "1 Main St", "Albany", "NY", "12201")
	insertMaster(t, db, "12345678901", 5.0, nyFlagged())
	insertMme(t, db, "123456789", 5.0, 1.5)
	insertTxn(t, db, "T1", "RW1234567", "2024-06-15", "C1", "NY", "12345678901")
	insertLicense(t, db, "C1", "1234567", "2024-01-01", "2024-12-31")
}

func TestRunCommitsNormalizationOnSuccess(t *testing.T) {
	db := newTestDB(t)
	seedValidRun(t, db)

	rec := newProgressRecorder()
	err := Run(db, DefaultOrder, testFlagColumn, testState, rec.record)
	require.NoError(t, err)

	for _, name := range DefaultOrder {
		rec.assertCompleted(t, name)
	}

	var tin string
	require.NoError(t, db.Get(&tin, `SELECT tin_number FROM warehouse_data WHERE dea_number = 'RW1234567'`))
	assert.Equal(t, "123456789", tin, "tin canonicalization must be committed")

	factor := getFactor(t, db, "12345678901")
	require.True(t, factor.Valid, "conversion factor assignment must be committed")
	assert.Equal(t, 1.5, factor.Float64)
}

func TestRunRollsBackNormalizationOnLaterFailure(t *testing.T) {
	db := newTestDB(t)
	seedValidRun(t, db)
	// A second flagged product with no reference row makes the final
	// validator fail after the consistency validator already cleaned a TIN.
	insertMaster(t, db, "99988877701", 10.0, nyFlagged())
	insertTxn(t, db, "T2", "RW1234567", "2024-06-15", "C1", "NY", "99988877701")

	err := Run(db, DefaultOrder, testFlagColumn, testState, NopProgress)
	require.Error(t, err)

	var mf *MissingConversionFactor
	require.True(t, errors.As(err, &mf))

	var tin string
	require.NoError(t, db.Get(&tin, `SELECT tin_number FROM warehouse_data WHERE dea_number = 'RW1234567'`))
	assert.Equal(t, "12-3456789", tin, "tin write must roll back when the run fails")

	assert.False(t, getFactor(t, db, "12345678901").Valid,
		"factor assignment must roll back when the run fails")
}

func TestRunHaltsOnFirstFailure(t *testing.T) {
	db := newTestDB(t)
	seedValidRun(t, db)
	// Bad enum flag fails the first validator; the orphan registrant would
	// fail the second but must never be reached.
	insertMaster(t, db, "55555555501", 1.0, flagSet{arcos: "Q", dscsa: "N", mi: "N", ny: "N"})
	insertTxn(t, db, "T9", "XX9999999", "2024-06-15", "C1", "NY", "12345678901")

	rec := newProgressRecorder()
	err := Run(db, DefaultOrder, testFlagColumn, testState, rec.record)
	require.Error(t, err)

	var ev *EnumViolation
	require.True(t, errors.As(err, &ev))
	assert.Empty(t, rec.calls[NameWarehouseRegistrants],
		"later validators must not run after a failure")
}

func TestRunRejectsUnknownValidatorName(t *testing.T) {
	db := newTestDB(t)
	err := Run(db, []string{"enum_flags", "no_such_validator"}, testFlagColumn, testState, NopProgress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_validator")
}

func TestRunRejectsUnknownFlagColumn(t *testing.T) {
	db := newTestDB(t)
	err := Run(db, DefaultOrder, "include_in_made_up_reports", testState, NopProgress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include_in_made_up_reports")
}

func TestRunReturnsExactlyOneUserError(t *testing.T) {
	db := newTestDB(t)
	insertWarehouse(t, db, "RW1234567", "12345", "Acme Corp", "1 Main St", "Albany", "NY", "12201")

	err := Run(db, []string{NameWarehouseConsistency}, testFlagColumn, testState, NopProgress)
	require.Error(t, err)

	var uerr UserError
	require.True(t, errors.As(err, &uerr))
	assert.NotEmpty(t, uerr.UserMessage())
}
