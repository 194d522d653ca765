package database

import (
	"database/sql"
	"fmt"
)

// ExciseSummaryRow is one line of the excise-style summary: totals per
// facility TIN. MME totals rely on the factors assigned during a
// successful validation run.
type ExciseSummaryRow struct {
	TinNumber     string  `db:"tin_number"`
	CorporateName string  `db:"corporate_name"`
	TotalQuantity float64 `db:"total_quantity"`
	TotalMme      float64 `db:"total_mme"`
}

// GetExciseSummaryByTin aggregates jurisdiction-flagged transactions by
// warehouse TIN. Read-only; only meaningful after a committed validation
// run has normalized TINs and assigned conversion factors.
func GetExciseSummaryByTin(dbtx DBTX, flagColumn, state string) ([]ExciseSummaryRow, error) {
	q := fmt.Sprintf(`
		SELECT w.tin_number, w.corporate_name,
		       SUM(t.quantity) AS total_quantity,
		       SUM(t.quantity * m.cs_strength_mg * COALESCE(m.mme_conv_factor, 0)) AS total_mme
		FROM transaction_data t
		JOIN warehouse_data w ON t.reporting_registrant_num = w.dea_number
		JOIN controlled_substance_master m ON t.ndc_num = m.ndc_no_dashes
		WHERE t.state = ? AND m.%s = 'Y'
		GROUP BY w.tin_number, w.corporate_name
		ORDER BY w.tin_number`, flagColumn)

	var rows []ExciseSummaryRow
	if err := dbtx.Select(&rows, q, state); err != nil {
		if err == sql.ErrNoRows {
			return []ExciseSummaryRow{}, nil
		}
		return nil, fmt.Errorf("excise summary query failed: %w", err)
	}
	return rows, nil
}
