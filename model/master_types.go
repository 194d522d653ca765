package model

import "database/sql"

// ControlledSubstanceMaster is one catalog entry per 11-digit NDC
// (ndc_no_dashes is the primary key). The four include_in_* flags are
// "Y"/"N" report-inclusion switches; MmeConvFactor stays NULL until the
// conversion-factor validator assigns it.
type ControlledSubstanceMaster struct {
	Ndc                  string          `db:"ndc" json:"ndc"`
	NdcNoDashes          string          `db:"ndc_no_dashes" json:"ndcNoDashes"`
	MaterialNum          string          `db:"material_num" json:"materialNum"`
	LabelDescription     string          `db:"label_description" json:"labelDescription"`
	IncludeInArcos       string          `db:"include_in_arcos_reports" json:"includeInArcosReports"`
	IncludeInDscsa       string          `db:"include_in_dscsa_reports" json:"includeInDscsaReports"`
	IncludeInMiState     string          `db:"include_in_mi_state_reports" json:"includeInMiStateReports"`
	IncludeInNyStateTax  string          `db:"include_in_ny_state_and_excise_tax_reports" json:"includeInNyStateAndExciseTaxReports"`
	CsStrengthMg         float64         `db:"cs_strength_mg" json:"csStrengthMg"`
	Form                 string          `db:"form" json:"form"`
	MmeConvFactor        sql.NullFloat64 `db:"mme_conv_factor" json:"mmeConvFactor"`
}

// NdcMmeData is the dosage-equivalence reference table, keyed by the
// 9-digit NDC prefix plus strength.
type NdcMmeData struct {
	NineDigitNdc        string  `db:"nine_digit_ndc" json:"nineDigitNdc"`
	StrengthPerUnit     float64 `db:"strength_per_unit" json:"strengthPerUnit"`
	MmeConversionFactor float64 `db:"mme_conversion_factor" json:"mmeConversionFactor"`
}

// WarehouseData is one distribution facility per DEA registrant number.
type WarehouseData struct {
	DeaNumber        string `db:"dea_number" json:"deaNumber"`
	TinNumber        string `db:"tin_number" json:"tinNumber"`
	CorporateName    string `db:"corporate_name" json:"corporateName"`
	CorporateAddress string `db:"corporate_address" json:"corporateAddress"`
	CorporateCity    string `db:"corporate_city" json:"corporateCity"`
	CorporateState   string `db:"corporate_state" json:"corporateState"`
	CorporateZip     string `db:"corporate_zip" json:"corporateZip"`
	Address          string `db:"address" json:"address"`
	City             string `db:"city" json:"city"`
	State            string `db:"state" json:"state"`
	Zip              string `db:"zip" json:"zip"`
	BusinessActivity string `db:"business_activity" json:"businessActivity"`
}

// CustomerLicenseData is one license grant. Customers can carry several
// rows (renewals, overlapping grants); valid_from/valid_to are inclusive
// ISO dates.
type CustomerLicenseData struct {
	ID            int    `db:"id" json:"id"`
	Customer      string `db:"customer" json:"customer"`
	LicenseType   string `db:"license_type" json:"licenseType"`
	LicenseNumber string `db:"license_number" json:"licenseNumber"`
	ValidFrom     string `db:"valid_from" json:"validFrom"`
	ValidTo       string `db:"valid_to" json:"validTo"`
}
