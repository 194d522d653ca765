package validation

import (
	"log"

	"csrep/database"
)

// EnumValidator checks that every configured flag column in the master
// catalog holds exactly 'Y' or 'N', never NULL. Violations are aggregated
// across all columns so an operator can fix every bad row in one pass.
type EnumValidator struct {
	table   string
	columns []string
}

func NewEnumValidator() *EnumValidator {
	return &EnumValidator{
		table:   "controlled_substance_master",
		columns: enumFlagColumns,
	}
}

func (v *EnumValidator) Name() string { return NameEnumFlags }

func (v *EnumValidator) Run(dbtx database.DBTX, progress Progress) error {
	invalid := map[string][]string{}

	for _, column := range v.columns {
		ndcs, err := database.GetInvalidFlagNdcs(dbtx, column)
		if err != nil {
			return &InfrastructureError{Op: "enum flag scan", Err: err}
		}
		if len(ndcs) > 0 {
			invalid[column] = append(invalid[column], ndcs...)
		}
	}
	progress(v.Name(), 50)

	if len(invalid) > 0 {
		log.Printf("ERROR: invalid enum values detected in %s: %v", v.table, invalid)
		return &EnumViolation{Table: v.table, Fields: invalid}
	}

	log.Println("All enum columns contain valid 'Y' or 'N' values.")
	progress(v.Name(), 100)
	return nil
}

var _ Validator = (*EnumValidator)(nil)
