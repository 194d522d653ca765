package report

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrep/database"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitSchema(db))
	return db
}

func seedReportData(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO warehouse_data (dea_number, tin_number, corporate_name)
		VALUES ('RW1234567', '123456789', 'Acme Corp')`)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO controlled_substance_master
			(ndc_no_dashes, include_in_arcos_reports, include_in_dscsa_reports,
			 include_in_mi_state_reports, include_in_ny_state_and_excise_tax_reports,
			 cs_strength_mg, mme_conv_factor)
		VALUES ('12345678901', 'N', 'N', 'N', 'Y', 5.0, 1.5)`)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO transaction_data
			(transaction_id, reporting_registrant_num, transaction_date,
			 ship_to_customer, ship_to_name, state, quantity, ndc_num)
		VALUES ('T1', 'RW1234567', '2024-06-15', 'C1', 'City Pharmacy', 'NY', 100, '12345678901'),
		       ('T2', 'RW1234567', '2024-06-16', 'C1', 'City Pharmacy', 'NY', 50, '12345678901')`)
	require.NoError(t, err)
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

// findOutput locates the single file the batch wrote for a job name,
// since file names carry a random batch suffix.
func findOutput(t *testing.T, dir, jobName string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, jobName+"_*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}

func TestGenerateAllWritesJurisdictionReports(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)
	outDir := t.TempDir()

	jobs := JurisdictionJobs("include_in_ny_state_and_excise_tax_reports", "NY")
	require.NoError(t, GenerateAll(db, outDir, 4, jobs))

	detail := readCSVFile(t, findOutput(t, outDir, "transaction_detail_NY"))
	require.Len(t, detail, 3, "header plus two transactions")
	assert.Equal(t, "transaction_id", detail[0][0])
	assert.Equal(t, "T1", detail[1][0])
	assert.Equal(t, "100", detail[1][6])

	summary := readCSVFile(t, findOutput(t, outDir, "excise_summary_NY"))
	require.Len(t, summary, 2, "header plus one TIN row")
	assert.Equal(t, "123456789", summary[1][0])
	assert.Equal(t, "Acme Corp", summary[1][1])
	assert.Equal(t, "150", summary[1][2])
	// 150 units * 5.0 mg * factor 1.5
	assert.Equal(t, "1125", summary[1][3])
}

func TestGenerateAllCreatesOutputDir(t *testing.T) {
	db := newTestDB(t)
	outDir := filepath.Join(t.TempDir(), "nested", "reports")

	jobs := JurisdictionJobs("include_in_ny_state_and_excise_tax_reports", "NY")
	require.NoError(t, GenerateAll(db, outDir, 1, jobs))

	_, err := os.Stat(findOutput(t, outDir, "transaction_detail_NY"))
	require.NoError(t, err)
}

func TestGenerateAllReturnsJobFailureAfterAllFinish(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)
	outDir := t.TempDir()

	boom := errors.New("disk full")
	jobs := []Job{
		{Name: "good", Generate: func(db *sqlx.DB, outPath string) error {
			return writeCSV(outPath, []string{"a"}, nil)
		}},
		{Name: "bad", Generate: func(db *sqlx.DB, outPath string) error {
			return boom
		}},
	}

	err := GenerateAll(db, outDir, 2, jobs)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")

	_, statErr := os.Stat(findOutput(t, outDir, "good"))
	assert.NoError(t, statErr, "finished reports stay in place on partial failure")
}
