package database

import (
	"database/sql"
	"fmt"

	"csrep/model"
)

// GetInvalidFlagNdcs returns the primary keys of master rows whose
// flagColumn holds anything other than the two sentinel values, or is NULL.
func GetInvalidFlagNdcs(dbtx DBTX, flagColumn string) ([]string, error) {
	q := fmt.Sprintf(`
		SELECT ndc_no_dashes FROM controlled_substance_master
		WHERE %[1]s NOT IN ('Y', 'N') OR %[1]s IS NULL
		ORDER BY ndc_no_dashes`, flagColumn)

	var ndcs []string
	if err := dbtx.Select(&ndcs, q); err != nil {
		if err == sql.ErrNoRows {
			return []string{}, nil
		}
		return nil, fmt.Errorf("flag scan for column %s failed: %w", flagColumn, err)
	}
	return ndcs, nil
}

func GetAllControlledSubstanceMasters(dbtx DBTX) ([]model.ControlledSubstanceMaster, error) {
	var masters []model.ControlledSubstanceMaster
	q := `SELECT ndc, ndc_no_dashes, material_num, label_description,
	       include_in_arcos_reports, include_in_dscsa_reports,
	       include_in_mi_state_reports, include_in_ny_state_and_excise_tax_reports,
	       cs_strength_mg, form, mme_conv_factor
	      FROM controlled_substance_master ORDER BY ndc_no_dashes`
	if err := dbtx.Select(&masters, q); err != nil {
		if err == sql.ErrNoRows {
			return []model.ControlledSubstanceMaster{}, nil
		}
		return nil, fmt.Errorf("failed to select controlled substance masters: %w", err)
	}
	if masters == nil {
		masters = []model.ControlledSubstanceMaster{}
	}
	return masters, nil
}

// UpdateMmeConvFactor assigns the matched conversion factor to one master
// row. One of the two mutations the validation run is allowed to make.
func UpdateMmeConvFactor(dbtx DBTX, ndcNoDashes string, factor float64) error {
	const q = `UPDATE controlled_substance_master SET mme_conv_factor = ? WHERE ndc_no_dashes = ?`
	if _, err := dbtx.Exec(q, factor, ndcNoDashes); err != nil {
		return fmt.Errorf("failed to update mme_conv_factor for %s: %w", ndcNoDashes, err)
	}
	return nil
}

// GetFlaggedNdcsMissingMme returns jurisdiction-flagged products that still
// have no assigned conversion factor.
func GetFlaggedNdcsMissingMme(dbtx DBTX, flagColumn string) ([]string, error) {
	q := fmt.Sprintf(`
		SELECT ndc_no_dashes FROM controlled_substance_master
		WHERE %s = 'Y' AND mme_conv_factor IS NULL
		ORDER BY ndc_no_dashes`, flagColumn)

	var ndcs []string
	if err := dbtx.Select(&ndcs, q); err != nil {
		if err == sql.ErrNoRows {
			return []string{}, nil
		}
		return nil, fmt.Errorf("missing-factor scan failed: %w", err)
	}
	return ndcs, nil
}

func InsertControlledSubstanceMaster(dbtx DBTX, m *model.ControlledSubstanceMaster) error {
	const q = `
	INSERT INTO controlled_substance_master (
		ndc, ndc_no_dashes, material_num, label_description,
		include_in_arcos_reports, include_in_dscsa_reports,
		include_in_mi_state_reports, include_in_ny_state_and_excise_tax_reports,
		cs_strength_mg, form, mme_conv_factor
	) VALUES (
		:ndc, :ndc_no_dashes, :material_num, :label_description,
		:include_in_arcos_reports, :include_in_dscsa_reports,
		:include_in_mi_state_reports, :include_in_ny_state_and_excise_tax_reports,
		:cs_strength_mg, :form, :mme_conv_factor
	)`
	if _, err := dbtx.NamedExec(q, m); err != nil {
		return fmt.Errorf("failed to insert controlled substance master: %w", err)
	}
	return nil
}
