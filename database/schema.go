package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS transaction_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	transaction_id TEXT,
	reporting_registrant_num TEXT NOT NULL,
	transaction_code TEXT NOT NULL DEFAULT '',
	transaction_date TEXT NOT NULL,
	ship_to_customer TEXT NOT NULL,
	ship_to_name TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zip_code TEXT NOT NULL DEFAULT '',
	dea_reg_nbr TEXT NOT NULL DEFAULT '',
	material_description TEXT NOT NULL DEFAULT '',
	quantity REAL NOT NULL DEFAULT 0,
	ndc_num TEXT NOT NULL,
	controlled_substance_class TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transaction_registrant ON transaction_data(reporting_registrant_num);
CREATE INDEX IF NOT EXISTS idx_transaction_ndc ON transaction_data(ndc_num);
CREATE INDEX IF NOT EXISTS idx_transaction_customer ON transaction_data(ship_to_customer);
CREATE INDEX IF NOT EXISTS idx_transaction_date ON transaction_data(transaction_date);

CREATE TABLE IF NOT EXISTS controlled_substance_master (
	ndc TEXT NOT NULL DEFAULT '',
	ndc_no_dashes TEXT PRIMARY KEY NOT NULL,
	material_num TEXT NOT NULL DEFAULT '',
	label_description TEXT NOT NULL DEFAULT '',
	include_in_arcos_reports TEXT,
	include_in_dscsa_reports TEXT,
	include_in_mi_state_reports TEXT,
	include_in_ny_state_and_excise_tax_reports TEXT,
	cs_strength_mg REAL NOT NULL DEFAULT 0,
	form TEXT NOT NULL DEFAULT '',
	mme_conv_factor REAL
);

CREATE TABLE IF NOT EXISTS warehouse_data (
	dea_number TEXT PRIMARY KEY NOT NULL,
	tin_number TEXT NOT NULL,
	corporate_name TEXT NOT NULL,
	corporate_address TEXT NOT NULL DEFAULT '',
	corporate_city TEXT NOT NULL DEFAULT '',
	corporate_state TEXT NOT NULL DEFAULT '',
	corporate_zip TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	zip TEXT NOT NULL DEFAULT '',
	business_activity TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS customer_license_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	customer TEXT NOT NULL,
	license_type TEXT NOT NULL DEFAULT '',
	license_number TEXT NOT NULL,
	valid_from TEXT NOT NULL,
	valid_to TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_license_customer ON customer_license_data(customer);

CREATE TABLE IF NOT EXISTS ndc_mme_data (
	nine_digit_ndc TEXT NOT NULL,
	strength_per_unit REAL,
	mme_conversion_factor REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mme_ndc ON ndc_mme_data(nine_digit_ndc);
`

// InitSchema applies the table definitions. No FOREIGN KEY constraints
// are declared: orphan rows must be loadable so the validation pass can
// report them with operator-facing messages.
func InitSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("Schema applied successfully.")
	return nil
}
