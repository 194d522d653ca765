package database

import (
	"database/sql"
	"fmt"

	"csrep/model"
)

// DistinctOrphanValues returns the distinct values of childColumn in
// childTable that have no matching parentColumn row in parentTable
// (left-anti-join). Column and table names come from the fixed relation
// set in the validation package, never from user input.
func DistinctOrphanValues(dbtx DBTX, childTable, childColumn, parentTable, parentColumn string) ([]string, error) {
	q := fmt.Sprintf(`
		SELECT DISTINCT c.%[1]s
		FROM %[2]s c
		LEFT JOIN %[3]s p ON c.%[1]s = p.%[4]s
		WHERE p.%[4]s IS NULL
		ORDER BY c.%[1]s`,
		childColumn, childTable, parentTable, parentColumn)

	var orphans []string
	if err := dbtx.Select(&orphans, q); err != nil {
		if err == sql.ErrNoRows {
			return []string{}, nil
		}
		return nil, fmt.Errorf("orphan query for %s.%s -> %s.%s failed: %w",
			childTable, childColumn, parentTable, parentColumn, err)
	}
	return orphans, nil
}

func InsertTransaction(dbtx DBTX, t *model.TransactionData) error {
	const q = `
	INSERT INTO transaction_data (
		transaction_id, reporting_registrant_num, transaction_code, transaction_date,
		ship_to_customer, ship_to_name, address, city, state, zip_code,
		dea_reg_nbr, material_description, quantity, ndc_num, controlled_substance_class
	) VALUES (
		:transaction_id, :reporting_registrant_num, :transaction_code, :transaction_date,
		:ship_to_customer, :ship_to_name, :address, :city, :state, :zip_code,
		:dea_reg_nbr, :material_description, :quantity, :ndc_num, :controlled_substance_class
	)`
	if _, err := dbtx.NamedExec(q, t); err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", t.TransactionID, err)
	}
	return nil
}

// GetTransactionsForJurisdiction returns the transactions in scope for
// state-level license validation: NDC flagged with flagColumn = 'Y' in the
// master and the transaction tagged with the jurisdiction state.
func GetTransactionsForJurisdiction(dbtx DBTX, flagColumn, state string) ([]model.TransactionData, error) {
	q := fmt.Sprintf(`
		SELECT t.id, t.transaction_id, t.reporting_registrant_num, t.transaction_code,
		       t.transaction_date, t.ship_to_customer, t.ship_to_name, t.address,
		       t.city, t.state, t.zip_code, t.dea_reg_nbr, t.material_description,
		       t.quantity, t.ndc_num, t.controlled_substance_class
		FROM transaction_data t
		WHERE t.state = ?
		  AND t.ndc_num IN (
			SELECT ndc_no_dashes FROM controlled_substance_master WHERE %s = 'Y'
		  )
		ORDER BY t.id`, flagColumn)

	var txns []model.TransactionData
	if err := dbtx.Select(&txns, q, state); err != nil {
		if err == sql.ErrNoRows {
			return []model.TransactionData{}, nil
		}
		return nil, fmt.Errorf("failed to select jurisdiction transactions: %w", err)
	}
	if txns == nil {
		txns = []model.TransactionData{}
	}
	return txns, nil
}
