package validation

import (
	"log"

	"csrep/database"
)

// ForeignKeyValidator computes the set of distinct child reference values
// with no matching parent key (left-anti-join) and aggregates every orphan
// before raising. SQLite's own FK enforcement is connection-scoped and its
// errors name neither the offending rows nor a remediation, so the check
// is done here.
type ForeignKeyValidator struct {
	name         string
	relation     string
	childTable   string
	childColumn  string
	parentTable  string
	parentColumn string
	midProgress  int
}

// NewWarehouseRegistrantValidator checks Transaction.registrant ->
// Warehouse.dea_number.
func NewWarehouseRegistrantValidator() *ForeignKeyValidator {
	return &ForeignKeyValidator{
		name:         NameWarehouseRegistrants,
		relation:     "warehouse",
		childTable:   "transaction_data",
		childColumn:  "reporting_registrant_num",
		parentTable:  "warehouse_data",
		parentColumn: "dea_number",
		midProgress:  50,
	}
}

// NewProductCodeValidator checks Transaction.ndc_num ->
// ControlledSubstanceMaster.ndc_no_dashes.
func NewProductCodeValidator() *ForeignKeyValidator {
	return &ForeignKeyValidator{
		name:         NameProductCodes,
		relation:     "product",
		childTable:   "transaction_data",
		childColumn:  "ndc_num",
		parentTable:  "controlled_substance_master",
		parentColumn: "ndc_no_dashes",
		midProgress:  66,
	}
}

func (v *ForeignKeyValidator) Name() string { return v.name }

func (v *ForeignKeyValidator) Run(dbtx database.DBTX, progress Progress) error {
	orphans, err := database.DistinctOrphanValues(dbtx,
		v.childTable, v.childColumn, v.parentTable, v.parentColumn)
	if err != nil {
		return &InfrastructureError{Op: "foreign key scan", Err: err}
	}
	progress(v.Name(), v.midProgress)

	if len(orphans) > 0 {
		log.Printf("ERROR: foreign key violations found in %s for %s: %v",
			v.childTable, v.parentTable, orphans)
		return &ReferentialViolation{
			Relation:    v.relation,
			ChildTable:  v.childTable,
			ParentTable: v.parentTable,
			Orphans:     orphans,
		}
	}

	progress(v.Name(), 100)
	log.Printf("All %s.%s values correspond to valid %s rows.",
		v.childTable, v.childColumn, v.parentTable)
	return nil
}

var _ Validator = (*ForeignKeyValidator)(nil)
