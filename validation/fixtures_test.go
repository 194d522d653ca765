package validation

import (
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"csrep/database"
)

const (
	testFlagColumn = "include_in_ny_state_and_excise_tax_reports"
	testState      = "NY"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every pool connection would otherwise get its own empty in-memory DB.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitSchema(db))
	return db
}

type flagSet struct {
	arcos, dscsa, mi, ny interface{}
}

func allN() flagSet { return flagSet{arcos: "N", dscsa: "N", mi: "N", ny: "N"} }

func nyFlagged() flagSet { return flagSet{arcos: "N", dscsa: "N", mi: "N", ny: "Y"} }

func insertMaster(t *testing.T, db *sqlx.DB, ndc string, strength float64, flags flagSet) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO controlled_substance_master
		(ndc_no_dashes, include_in_arcos_reports, include_in_dscsa_reports,
		 include_in_mi_state_reports, include_in_ny_state_and_excise_tax_reports,
		 cs_strength_mg)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ndc, flags.arcos, flags.dscsa, flags.mi, flags.ny, strength)
	require.NoError(t, err)
}

func insertTxn(t *testing.T, db *sqlx.DB, txnID, registrant, date, customer, state, ndc string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO transaction_data
		(transaction_id, reporting_registrant_num, transaction_date,
		 ship_to_customer, state, quantity, ndc_num)
		VALUES (?, ?, ?, ?, ?, 1, ?)`,
		txnID, registrant, date, customer, state, ndc)
	require.NoError(t, err)
}

func insertWarehouse(t *testing.T, db *sqlx.DB, dea, tin, name, address, city, state, zip string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO warehouse_data
		(dea_number, tin_number, corporate_name, corporate_address,
		 corporate_city, corporate_state, corporate_zip)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		dea, tin, name, address, city, state, zip)
	require.NoError(t, err)
}

func insertLicense(t *testing.T, db *sqlx.DB, customer, number, from, to string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO customer_license_data (customer, license_number, valid_from, valid_to)
		VALUES (?, ?, ?, ?)`,
		customer, number, from, to)
	require.NoError(t, err)
}

func insertMme(t *testing.T, db *sqlx.DB, prefix string, strength, factor float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO ndc_mme_data (nine_digit_ndc, strength_per_unit, mme_conversion_factor)
		VALUES (?, ?, ?)`,
		prefix, strength, factor)
	require.NoError(t, err)
}

// progressRecorder captures progress callbacks for assertion.
type progressRecorder struct {
	mu    sync.Mutex
	calls map[string][]int
}

func newProgressRecorder() *progressRecorder {
	return &progressRecorder{calls: map[string][]int{}}
}

func (p *progressRecorder) record(name string, percent int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[name] = append(p.calls[name], percent)
}

func (p *progressRecorder) assertCompleted(t *testing.T, name string) {
	t.Helper()
	seq := p.calls[name]
	require.NotEmpty(t, seq, "no progress recorded for %s", name)
	last := -1
	for _, pct := range seq {
		require.GreaterOrEqual(t, pct, last, "progress for %s went backwards: %v", name, seq)
		last = pct
	}
	require.Equal(t, 100, seq[len(seq)-1], "progress for %s never reached 100: %v", name, seq)
}
