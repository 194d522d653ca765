package validation

import (
	"fmt"

	"csrep/database"
)

// Progress receives (validator name, percent complete). Percent is
// non-decreasing within one validator and reaches 100 immediately before
// the validator reports success. Callers that do not want reporting pass
// NopProgress, never nil.
type Progress func(name string, percent int)

// NopProgress discards progress updates.
func NopProgress(string, int) {}

// Validator is one unit of the engine. Run reads (and, for the two
// normalizing validators, writes) through dbtx; a returned error is either
// a violation from the taxonomy in errors.go or an InfrastructureError.
type Validator interface {
	Name() string
	Run(dbtx database.DBTX, progress Progress) error
}

// Validator identifiers accepted in configuration.
const (
	NameEnumFlags            = "enum_flags"
	NameWarehouseRegistrants = "warehouse_registrants"
	NameProductCodes         = "product_codes"
	NameCustomerLicenses     = "customer_licenses"
	NameWarehouseConsistency = "warehouse_consistency"
	NameConversionFactors    = "conversion_factors"
)

// DefaultOrder is the production run order.
var DefaultOrder = []string{
	NameEnumFlags,
	NameWarehouseRegistrants,
	NameProductCodes,
	NameCustomerLicenses,
	NameWarehouseConsistency,
	NameConversionFactors,
}

// enumFlagColumns are the four report-inclusion flags the enum validator
// scans; they are also the only columns accepted as jurisdiction flags.
var enumFlagColumns = []string{
	"include_in_arcos_reports",
	"include_in_dscsa_reports",
	"include_in_mi_state_reports",
	"include_in_ny_state_and_excise_tax_reports",
}

func validFlagColumn(column string) bool {
	for _, c := range enumFlagColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Resolve maps configured validator identifiers to instances. This is the
// single boundary where configuration strings become concrete validators;
// an unknown identifier or jurisdiction flag column fails here, before any
// transaction is opened.
func Resolve(names []string, flagColumn, state string) ([]Validator, error) {
	if !validFlagColumn(flagColumn) {
		return nil, fmt.Errorf("unknown jurisdiction flag column %q", flagColumn)
	}
	validators := make([]Validator, 0, len(names))
	for _, name := range names {
		switch name {
		case NameEnumFlags:
			validators = append(validators, NewEnumValidator())
		case NameWarehouseRegistrants:
			validators = append(validators, NewWarehouseRegistrantValidator())
		case NameProductCodes:
			validators = append(validators, NewProductCodeValidator())
		case NameCustomerLicenses:
			validators = append(validators, NewLicenseValidator(flagColumn, state))
		case NameWarehouseConsistency:
			validators = append(validators, NewConsistencyValidator())
		case NameConversionFactors:
			validators = append(validators, NewConversionFactorValidator(flagColumn))
		default:
			return nil, fmt.Errorf("unknown validator %q", name)
		}
	}
	return validators, nil
}
