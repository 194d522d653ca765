package database

import (
	"database/sql"
	"fmt"

	"csrep/model"
)

// GetMmeDataByPrefix returns every conversion-factor reference row sharing
// one 9-digit NDC prefix.
func GetMmeDataByPrefix(dbtx DBTX, nineDigitNdc string) ([]model.NdcMmeData, error) {
	var rows []model.NdcMmeData
	q := `SELECT nine_digit_ndc, strength_per_unit, mme_conversion_factor
	      FROM ndc_mme_data WHERE nine_digit_ndc = ?`
	if err := dbtx.Select(&rows, q, nineDigitNdc); err != nil {
		if err == sql.ErrNoRows {
			return []model.NdcMmeData{}, nil
		}
		return nil, fmt.Errorf("failed to select mme data for prefix %s: %w", nineDigitNdc, err)
	}
	return rows, nil
}

func InsertNdcMmeData(dbtx DBTX, m *model.NdcMmeData) error {
	const q = `
	INSERT INTO ndc_mme_data (nine_digit_ndc, strength_per_unit, mme_conversion_factor)
	VALUES (:nine_digit_ndc, :strength_per_unit, :mme_conversion_factor)`
	if _, err := dbtx.NamedExec(q, m); err != nil {
		return fmt.Errorf("failed to insert mme data for %s: %w", m.NineDigitNdc, err)
	}
	return nil
}
