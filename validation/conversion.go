package validation

import (
	"log"

	"csrep/database"
)

// ConversionFactorValidator matches each master row against the
// dosage-equivalence reference by 9-digit NDC prefix and exact strength,
// assigns the factor on a unique match (the run's second permitted
// mutation), and validates that every jurisdiction-flagged product ends up
// with a factor.
//
// Ambiguity in the reference table aborts immediately: duplicate rows for
// one (prefix, strength) pair mean the reference data itself is corrupt
// and every later comparison would be misleading. Strength mismatches and
// missing factors are itemizable data-entry problems and aggregate.
type ConversionFactorValidator struct {
	flagColumn string
}

func NewConversionFactorValidator(flagColumn string) *ConversionFactorValidator {
	return &ConversionFactorValidator{flagColumn: flagColumn}
}

func (v *ConversionFactorValidator) Name() string { return NameConversionFactors }

func (v *ConversionFactorValidator) Run(dbtx database.DBTX, progress Progress) error {
	masters, err := database.GetAllControlledSubstanceMasters(dbtx)
	if err != nil {
		return &InfrastructureError{Op: "master fetch", Err: err}
	}

	var mismatches []StrengthMismatch
	for _, m := range masters {
		prefix := m.NdcNoDashes
		if len(prefix) > 9 {
			prefix = prefix[:9]
		}

		mmeRows, err := database.GetMmeDataByPrefix(dbtx, prefix)
		if err != nil {
			return &InfrastructureError{Op: "mme reference fetch", Err: err}
		}
		if len(mmeRows) == 0 {
			// Factor legitimately absent for non-opioid products; flagged
			// products are caught by the missing-factor recheck below.
			continue
		}

		matchCount := 0
		var factor float64
		for _, r := range mmeRows {
			if r.StrengthPerUnit == m.CsStrengthMg {
				matchCount++
				factor = r.MmeConversionFactor
			}
		}

		switch {
		case matchCount > 1:
			log.Printf("ERROR: multiple matching MME strengths found for NDC %s", m.NdcNoDashes)
			return &ConversionAmbiguity{NdcNoDashes: m.NdcNoDashes, Strength: m.CsStrengthMg}
		case matchCount == 1:
			if err := database.UpdateMmeConvFactor(dbtx, m.NdcNoDashes, factor); err != nil {
				return &InfrastructureError{Op: "mme factor assignment", Err: err}
			}
		default:
			mismatches = append(mismatches, StrengthMismatch{
				NdcNoDashes: m.NdcNoDashes,
				Strength:    m.CsStrengthMg,
			})
		}
	}
	progress(v.Name(), 50)

	if len(mismatches) > 0 {
		log.Printf("ERROR: master strength does not match MME reference for %d products", len(mismatches))
		return &ConversionMismatch{Entries: mismatches}
	}

	missing, err := database.GetFlaggedNdcsMissingMme(dbtx, v.flagColumn)
	if err != nil {
		return &InfrastructureError{Op: "missing factor scan", Err: err}
	}
	if len(missing) > 0 {
		log.Printf("ERROR: missing MME conversion factors for NDCs: %v", missing)
		return &MissingConversionFactor{Ndcs: missing}
	}

	progress(v.Name(), 100)
	log.Println("MME conversion factors successfully appended and validated.")
	return nil
}

var _ Validator = (*ConversionFactorValidator)(nil)
