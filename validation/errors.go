package validation

import (
	"fmt"
	"sort"
	"strings"
)

// UserError is implemented by every violation in the taxonomy. Error()
// stays technical for logs; UserMessage() is safe to show a non-technical
// operator and uses the friendly labels below instead of table/column names.
type UserError interface {
	error
	UserMessage() string
}

var friendlyTableNames = map[string]string{
	"transaction_data":            "Transaction Data",
	"customer_license_data":       "Customer License Data",
	"controlled_substance_master": "Controlled Substance Master",
	"ndc_mme_data":                "NDC MME Data",
	"warehouse_data":              "Warehouse Data",
}

var friendlyColumnNames = map[string]string{
	"include_in_arcos_reports":                   "For ARCOS Reports",
	"include_in_dscsa_reports":                   "For DSCSA Reports",
	"include_in_mi_state_reports":                "For Michigan State Reports",
	"include_in_ny_state_and_excise_tax_reports": "For New York State and Excise Tax Reports",
}

func friendlyTable(name string) string {
	if f, ok := friendlyTableNames[name]; ok {
		return f
	}
	return name
}

func friendlyColumn(name string) string {
	if f, ok := friendlyColumnNames[name]; ok {
		return f
	}
	return name
}

// EnumViolation reports master rows whose report-inclusion flags hold
// anything other than 'Y' or 'N'. Fields maps column name to offending NDCs.
type EnumViolation struct {
	Table  string
	Fields map[string][]string
}

func (e *EnumViolation) Error() string {
	return fmt.Sprintf("invalid enum values in %s: %v", e.Table, e.Fields)
}

func (e *EnumViolation) UserMessage() string {
	ndcSet := map[string]bool{}
	var columns []string
	for col, ndcs := range e.Fields {
		columns = append(columns, friendlyColumn(col))
		for _, n := range ndcs {
			ndcSet[n] = true
		}
	}
	ndcs := make([]string, 0, len(ndcSet))
	for n := range ndcSet {
		ndcs = append(ndcs, n)
	}
	sort.Strings(ndcs)
	sort.Strings(columns)
	return fmt.Sprintf(
		"Invalid values detected in the %s for the following NDCs:\n\n%s\n\n"+
			"Please ensure the values in the following columns contain a 'Y' or 'N' value:\n\n%s",
		friendlyTable(e.Table), strings.Join(ndcs, ", "), strings.Join(columns, ", "))
}

// ReferentialViolation reports child reference values with no parent row.
type ReferentialViolation struct {
	Relation    string // "warehouse" or "product"
	ChildTable  string
	ParentTable string
	Orphans     []string
}

func (e *ReferentialViolation) Error() string {
	return fmt.Sprintf("foreign key violations in %s for %s (%s relation): %v",
		e.ChildTable, e.ParentTable, e.Relation, e.Orphans)
}

func (e *ReferentialViolation) UserMessage() string {
	switch e.Relation {
	case "warehouse":
		return fmt.Sprintf(
			"Unrecognized DEA numbers for distribution warehouses were found in the %s. "+
				"If the following numbers correspond to valid warehouses, please add them to the %s "+
				"with corresponding metadata and try again:\n\n%s",
			friendlyTable(e.ChildTable), friendlyTable(e.ParentTable), strings.Join(e.Orphans, ", "))
	case "product":
		return fmt.Sprintf(
			"Unrecognized products/NDCs found in the %s. If these are valid controlled substance "+
				"products, add them to the %s with relevant metadata and try again.\n\nNDC Numbers:\n\n%s",
			friendlyTable(e.ChildTable), friendlyTable(e.ParentTable), strings.Join(e.Orphans, ", "))
	}
	return fmt.Sprintf("Unrecognized reference values found in the %s:\n\n%s",
		friendlyTable(e.ChildTable), strings.Join(e.Orphans, ", "))
}

// FormatKind narrows a FormatViolation to the field family that failed.
type FormatKind string

const (
	FormatLicenseNumber FormatKind = "license-number"
	FormatTaxIdentifier FormatKind = "tax-identifier"
)

// FormatViolation reports values that fail a fixed-format rule
// (7-digit license numbers, 9-digit TINs).
type FormatViolation struct {
	Kind   FormatKind
	Values []string
}

func (e *FormatViolation) Error() string {
	return fmt.Sprintf("%s values not properly formatted: %v", e.Kind, e.Values)
}

func (e *FormatViolation) UserMessage() string {
	switch e.Kind {
	case FormatLicenseNumber:
		return fmt.Sprintf(
			"All State CS License Numbers must be 7 digits and the following State CS License "+
				"Numbers appear to be incorrect: %s", strings.Join(e.Values, ", "))
	case FormatTaxIdentifier:
		return fmt.Sprintf(
			"One or more of the TINs in the %s is not in the expected format (9 digits). "+
				"Please revise and try again: %s",
			friendlyTable("warehouse_data"), strings.Join(e.Values, ", "))
	}
	return fmt.Sprintf("The following values are not in the expected format: %s",
		strings.Join(e.Values, ", "))
}

// CoverageRef identifies one transaction in a license-coverage violation.
type CoverageRef struct {
	TransactionID string
	Customer      string
	Date          string
}

func (r CoverageRef) String() string {
	return fmt.Sprintf("transaction %s (customer %s, date %s)", r.TransactionID, r.Customer, r.Date)
}

func formatCoverageRefs(refs []CoverageRef) string {
	lines := make([]string, len(refs))
	for i, r := range refs {
		lines[i] = "  - " + r.String()
	}
	return strings.Join(lines, "\n")
}

// MissingLicenseCoverage reports in-scope transactions with no license row
// covering the transaction date.
type MissingLicenseCoverage struct {
	Transactions []CoverageRef
}

func (e *MissingLicenseCoverage) Error() string {
	return fmt.Sprintf("no valid customer licenses found for %d transactions", len(e.Transactions))
}

func (e *MissingLicenseCoverage) UserMessage() string {
	return fmt.Sprintf("No valid licenses found for some transactions:\n\n%s\n\n"+
		"Please add or correct the licenses in the %s and try again.",
		formatCoverageRefs(e.Transactions), friendlyTable("customer_license_data"))
}

// AmbiguousLicenseCoverage reports in-scope transactions covered by more
// than one license row on the transaction date.
type AmbiguousLicenseCoverage struct {
	Transactions []CoverageRef
}

func (e *AmbiguousLicenseCoverage) Error() string {
	return fmt.Sprintf("multiple valid customer licenses found for %d transactions", len(e.Transactions))
}

func (e *AmbiguousLicenseCoverage) UserMessage() string {
	return fmt.Sprintf("Multiple valid licenses were found for some transactions:\n\n%s\n\n"+
		"Please resolve the license ambiguity in the %s and try again.",
		formatCoverageRefs(e.Transactions), friendlyTable("customer_license_data"))
}

// ConsistencyViolation reports breaks in the TIN <-> corporate identity
// bijection, in both directions.
type ConsistencyViolation struct {
	TinToIdentities map[string][]string
	IdentityToTins  map[string][]string
}

func (e *ConsistencyViolation) Error() string {
	return fmt.Sprintf("warehouse data inconsistencies: %d TINs with multiple identities, %d identities with multiple TINs",
		len(e.TinToIdentities), len(e.IdentityToTins))
}

func (e *ConsistencyViolation) UserMessage() string {
	var b strings.Builder
	b.WriteString("Detected inconsistencies in the " + friendlyTable("warehouse_data") + ":\n")
	tins := sortedKeys(e.TinToIdentities)
	for _, tin := range tins {
		fmt.Fprintf(&b, "\nTIN# %s is associated with multiple corporate information sets:\n", tin)
		for _, identity := range e.TinToIdentities[tin] {
			b.WriteString("   - " + identity + "\n")
		}
	}
	identities := sortedKeys(e.IdentityToTins)
	for _, identity := range identities {
		fmt.Fprintf(&b, "\nCorporate info %s is associated with multiple TINs:\n", identity)
		for _, tin := range e.IdentityToTins[identity] {
			b.WriteString("   - " + tin + "\n")
		}
	}
	return b.String()
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConversionAmbiguity is the one fail-fast violation: duplicate reference
// rows for the same (prefix, strength) pair poison every later comparison,
// so the sweep aborts on first detection.
type ConversionAmbiguity struct {
	NdcNoDashes string
	Strength    float64
}

func (e *ConversionAmbiguity) Error() string {
	return fmt.Sprintf("multiple MME records found for NDC %s and strength %g", e.NdcNoDashes, e.Strength)
}

func (e *ConversionAmbiguity) UserMessage() string {
	return fmt.Sprintf("Please check the %s for duplicates or data errors related to NDC: %s and Strength: %g.",
		friendlyTable("ndc_mme_data"), e.NdcNoDashes, e.Strength)
}

// StrengthMismatch is one product whose prefix exists in the reference
// table but whose strength matches no reference row.
type StrengthMismatch struct {
	NdcNoDashes string
	Strength    float64
}

// ConversionMismatch aggregates strength disagreements between the master
// catalog and the conversion-factor reference.
type ConversionMismatch struct {
	Entries []StrengthMismatch
}

func (e *ConversionMismatch) Error() string {
	return fmt.Sprintf("master strength does not match MME reference strength for %d products", len(e.Entries))
}

func (e *ConversionMismatch) UserMessage() string {
	lines := make([]string, len(e.Entries))
	for i, m := range e.Entries {
		lines[i] = fmt.Sprintf("NDC: %s, Strength: %g", m.NdcNoDashes, m.Strength)
	}
	return fmt.Sprintf("The strength listed in the %s does not match the strength in the %s. "+
		"Please double-check and update the master data accordingly:\n\n%s",
		friendlyTable("ndc_mme_data"), friendlyTable("controlled_substance_master"),
		strings.Join(lines, "\n"))
}

// MissingConversionFactor reports jurisdiction-flagged products left
// without an assigned conversion factor after the sweep.
type MissingConversionFactor struct {
	Ndcs []string
}

func (e *MissingConversionFactor) Error() string {
	return fmt.Sprintf("missing MME conversion factors for NDCs: %v", e.Ndcs)
}

func (e *MissingConversionFactor) UserMessage() string {
	return fmt.Sprintf("The MME conversion factor is required for all flagged opioid products and a "+
		"match was not found for the following NDCs in the %s:\n\n%s",
		friendlyTable("controlled_substance_master"), strings.Join(e.Ndcs, "\n"))
}

// InfrastructureError wraps store failures and other non-data faults so the
// caller can still show a calm message to the operator.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infrastructure error during %s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) UserMessage() string {
	return "An unexpected database error occurred while validating the data. Please try again."
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}
