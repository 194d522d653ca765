package validation

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"csrep/database"
	"csrep/model"
)

var tinPattern = regexp.MustCompile(`^[0-9]{9}$`)

// ConsistencyValidator canonicalizes warehouse TINs (separator characters
// stripped, exactly 9 digits required) and then checks that the mapping
// between TINs and corporate identity tuples is a bijection in both
// directions. The TIN write-back is one of the run's two permitted
// mutations and persists only if the whole run commits.
type ConsistencyValidator struct{}

func NewConsistencyValidator() *ConsistencyValidator {
	return &ConsistencyValidator{}
}

func (v *ConsistencyValidator) Name() string { return NameWarehouseConsistency }

func (v *ConsistencyValidator) Run(dbtx database.DBTX, progress Progress) error {
	warehouses, err := database.GetAllWarehouses(dbtx)
	if err != nil {
		return &InfrastructureError{Op: "warehouse fetch", Err: err}
	}

	if err := cleanTinValues(dbtx, warehouses); err != nil {
		return err
	}
	progress(v.Name(), 50)

	if err := checkTinBijection(warehouses); err != nil {
		return err
	}

	progress(v.Name(), 100)
	log.Println("Warehouse data consistency validated successfully.")
	return nil
}

// cleanTinValues strips dash and space separators from every TIN and
// writes changed values back through the handle. Format failures are
// aggregated across all rows and raised together; a TIN containing
// anything other than digits and separators fails rather than being
// silently repaired.
func cleanTinValues(dbtx database.DBTX, warehouses []model.WarehouseData) error {
	var malformed []string
	for i := range warehouses {
		w := &warehouses[i]
		cleaned := strings.Map(func(r rune) rune {
			if r == '-' || r == ' ' {
				return -1
			}
			return r
		}, w.TinNumber)

		if !tinPattern.MatchString(cleaned) {
			malformed = append(malformed, w.TinNumber)
		}

		if cleaned != w.TinNumber {
			if err := database.UpdateWarehouseTin(dbtx, w.DeaNumber, cleaned); err != nil {
				return &InfrastructureError{Op: "tin write-back", Err: err}
			}
			w.TinNumber = cleaned
		}
	}

	if len(malformed) > 0 {
		log.Printf("ERROR: warehouse TINs not properly formatted: %v", malformed)
		return &FormatViolation{Kind: FormatTaxIdentifier, Values: malformed}
	}

	log.Println("TIN values cleaned, validated and updated successfully.")
	return nil
}

// checkTinBijection builds both relations (TIN -> identities, identity ->
// TINs) and requires fan-out exactly 1 in each. Identity tuples are
// compared case-folded with trimmed fields so letter-case drift between
// imports does not split one identity in two; the stored forms appear in
// the violation output.
func checkTinBijection(warehouses []model.WarehouseData) error {
	folder := cases.Fold()

	type identitySet map[string]string // canonical key -> display form
	tinToIdentities := map[string]identitySet{}
	identityToTins := map[string]map[string]bool{}
	identityDisplay := map[string]string{}

	for _, w := range warehouses {
		fields := []string{
			w.CorporateName, w.CorporateAddress, w.CorporateCity,
			w.CorporateState, w.CorporateZip,
		}
		display := strings.Join(fields, ", ")

		canonical := make([]string, len(fields))
		for i, f := range fields {
			canonical[i] = folder.String(strings.TrimSpace(f))
		}
		key := strings.Join(canonical, "|")

		if tinToIdentities[w.TinNumber] == nil {
			tinToIdentities[w.TinNumber] = identitySet{}
		}
		tinToIdentities[w.TinNumber][key] = display

		if identityToTins[key] == nil {
			identityToTins[key] = map[string]bool{}
		}
		identityToTins[key][w.TinNumber] = true
		identityDisplay[key] = display
	}

	multiIdentity := map[string][]string{}
	for tin, identities := range tinToIdentities {
		if len(identities) > 1 {
			for _, display := range identities {
				multiIdentity[tin] = append(multiIdentity[tin], display)
			}
			sort.Strings(multiIdentity[tin])
		}
	}

	multiTin := map[string][]string{}
	for key, tins := range identityToTins {
		if len(tins) > 1 {
			display := identityDisplay[key]
			for tin := range tins {
				multiTin[display] = append(multiTin[display], tin)
			}
			sort.Strings(multiTin[display])
		}
	}

	if len(multiIdentity) > 0 || len(multiTin) > 0 {
		log.Printf("ERROR: warehouse consistency violations: %d TINs with multiple identities, %d identities with multiple TINs",
			len(multiIdentity), len(multiTin))
		return &ConsistencyViolation{
			TinToIdentities: multiIdentity,
			IdentityToTins:  multiTin,
		}
	}
	return nil
}

var _ Validator = (*ConsistencyValidator)(nil)
