package validation

import (
	"fmt"
	"log"
	"regexp"
	"time"

	"csrep/database"
	"csrep/model"
)

var licenseNumberPattern = regexp.MustCompile(`^[0-9]{7}$`)

// LicenseValidator checks that every in-scope transaction has exactly one
// customer license whose validity interval contains the transaction date,
// inclusive on both ends. In scope: transactions tagged with the target
// jurisdiction whose product carries the jurisdiction flag.
//
// License number format is checked first, across all license rows:
// malformed numbers make coverage results meaningless. Missing coverage is
// raised before ambiguity; both aggregate every affected transaction.
type LicenseValidator struct {
	flagColumn string
	state      string
}

func NewLicenseValidator(flagColumn, state string) *LicenseValidator {
	return &LicenseValidator{flagColumn: flagColumn, state: state}
}

func (v *LicenseValidator) Name() string { return NameCustomerLicenses }

func (v *LicenseValidator) Run(dbtx database.DBTX, progress Progress) error {
	txns, err := database.GetTransactionsForJurisdiction(dbtx, v.flagColumn, v.state)
	if err != nil {
		return &InfrastructureError{Op: "jurisdiction transaction fetch", Err: err}
	}
	progress(v.Name(), 33)

	if len(txns) == 0 {
		log.Printf("No sales transactions with relevant NDCs for %s found. "+
			"State-level reports cannot be generated from this data set.", v.state)
		progress(v.Name(), 100)
		return nil
	}

	licenses, err := database.GetAllCustomerLicenses(dbtx)
	if err != nil {
		return &InfrastructureError{Op: "customer license fetch", Err: err}
	}

	if err := checkLicenseNumberFormat(licenses); err != nil {
		return err
	}
	progress(v.Name(), 66)

	if err := checkLicenseCoverage(txns, licenses); err != nil {
		return err
	}

	progress(v.Name(), 100)
	log.Println("Customer license data validated successfully.")
	return nil
}

func checkLicenseNumberFormat(licenses []model.CustomerLicenseData) error {
	var malformed []string
	for _, l := range licenses {
		if !licenseNumberPattern.MatchString(l.LicenseNumber) {
			malformed = append(malformed, l.LicenseNumber)
		}
	}
	if len(malformed) > 0 {
		log.Printf("ERROR: license numbers not exactly 7 digits: %v", malformed)
		return &FormatViolation{Kind: FormatLicenseNumber, Values: malformed}
	}
	log.Println("All State CS License Numbers are exactly 7 digits long.")
	return nil
}

type licenseInterval struct {
	from time.Time
	to   time.Time
}

// checkLicenseCoverage requires exactly one covering license per
// transaction. Licenses are indexed by customer up front so each
// transaction only scans its own customer's intervals.
func checkLicenseCoverage(txns []model.TransactionData, licenses []model.CustomerLicenseData) error {
	byCustomer := make(map[string][]licenseInterval, len(licenses))
	for _, l := range licenses {
		from, err := parseDate(l.ValidFrom)
		if err != nil {
			return &InfrastructureError{Op: "license valid_from parse", Err: err}
		}
		to, err := parseDate(l.ValidTo)
		if err != nil {
			return &InfrastructureError{Op: "license valid_to parse", Err: err}
		}
		byCustomer[l.Customer] = append(byCustomer[l.Customer], licenseInterval{from: from, to: to})
	}

	var missing, ambiguous []CoverageRef
	for _, t := range txns {
		date, err := parseDate(t.TransactionDate)
		if err != nil {
			return &InfrastructureError{Op: "transaction date parse", Err: err}
		}
		matches := 0
		for _, iv := range byCustomer[t.ShipToCustomer] {
			if !date.Before(iv.from) && !date.After(iv.to) {
				matches++
			}
		}
		ref := CoverageRef{
			TransactionID: t.TransactionID,
			Customer:      t.ShipToCustomer,
			Date:          t.TransactionDate,
		}
		switch {
		case matches == 0:
			missing = append(missing, ref)
		case matches > 1:
			ambiguous = append(ambiguous, ref)
		}
	}

	// Missing coverage is checked first; ambiguity only matters once every
	// transaction has at least one license.
	if len(missing) > 0 {
		log.Printf("ERROR: no valid licenses found for %d transactions", len(missing))
		return &MissingLicenseCoverage{Transactions: missing}
	}
	if len(ambiguous) > 0 {
		log.Printf("ERROR: multiple valid licenses found for %d transactions", len(ambiguous))
		return &AmbiguousLicenseCoverage{Transactions: ambiguous}
	}

	log.Println("All transactions have exactly one valid customer license.")
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

var _ Validator = (*LicenseValidator)(nil)
