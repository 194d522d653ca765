package loader

import (
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

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

const mastersCSV = `ndc,ndc_no_dashes,material_num,label_description,include_in_arcos_reports,include_in_dscsa_reports,include_in_mi_state_reports,include_in_ny_state_and_excise_tax_reports,cs_strength_mg,form
12345-678-90,12345678901,M001,OXYCODONE 5MG TAB,Y,N,N,Y,5.0,TAB
`

const warehousesCSV = `dea_number,tin_number,corporate_name,corporate_address,corporate_city,corporate_state,corporate_zip,address,city,state,zip,business_activity
RW1234567,123456789,Acme Corp,1 Main St,Albany,NY,12201,1 Main St,Albany,NY,12201,Distributor
`

const licensesCSV = `customer,license_type,license_number,valid_from,valid_to
C1,Pharmacy,1234567,2024-01-01,2024-12-31
C1,Pharmacy,7654321,2025-01-01,2025-12-31
`

const mmeCSV = `nine_digit_ndc,strength_per_unit,mme_conversion_factor
123456789,5.0,1.5
`

const transactionsCSV = `transaction_id,reporting_registrant_num,transaction_code,transaction_date,ship_to_customer,ship_to_name,address,city,state,zip_code,dea_reg_nbr,material_description,quantity,ndc_num,controlled_substance_class
T1,RW1234567,S,2024-06-15,C1,City Pharmacy,2 Oak Ave,Buffalo,NY,14201,BC7654321,OXYCODONE 5MG TAB,100,12345678901,II
`

func TestLoadFolderImportsAllFiles(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	writeFixture(t, dir, MastersFile, mastersCSV)
	writeFixture(t, dir, WarehousesFile, warehousesCSV)
	writeFixture(t, dir, LicensesFile, licensesCSV)
	writeFixture(t, dir, MmeFile, mmeCSV)
	writeFixture(t, dir, TransactionsFile, transactionsCSV)

	require.NoError(t, LoadFolder(db, dir))

	assert.Equal(t, 1, countRows(t, db, "controlled_substance_master"))
	assert.Equal(t, 1, countRows(t, db, "warehouse_data"))
	assert.Equal(t, 2, countRows(t, db, "customer_license_data"))
	assert.Equal(t, 1, countRows(t, db, "ndc_mme_data"))
	assert.Equal(t, 1, countRows(t, db, "transaction_data"))

	var strength float64
	require.NoError(t, db.Get(&strength,
		`SELECT cs_strength_mg FROM controlled_substance_master WHERE ndc_no_dashes = '12345678901'`))
	assert.Equal(t, 5.0, strength)
}

func TestLoadFolderSkipsMissingFiles(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	writeFixture(t, dir, MastersFile, mastersCSV)

	require.NoError(t, LoadFolder(db, dir))
	assert.Equal(t, 1, countRows(t, db, "controlled_substance_master"))
	assert.Equal(t, 0, countRows(t, db, "transaction_data"))
}

func TestLoadFolderToleratesByteOrderMark(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	writeFixture(t, dir, MastersFile, "\xef\xbb\xbf"+mastersCSV)

	require.NoError(t, LoadFolder(db, dir))

	var ndc string
	require.NoError(t, db.Get(&ndc,
		`SELECT ndc_no_dashes FROM controlled_substance_master LIMIT 1`))
	assert.Equal(t, "12345678901", ndc)
}

func TestLoadFolderRollsBackOnBadRow(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()
	writeFixture(t, dir, WarehousesFile, warehousesCSV)
	bad := mmeCSV + "123456789,not_a_number,1.5\n"
	writeFixture(t, dir, MmeFile, bad)

	err := LoadFolder(db, dir)
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, db, "warehouse_data"),
		"earlier files must roll back with the failing one")
	assert.Equal(t, 0, countRows(t, db, "ndc_mme_data"))
}
