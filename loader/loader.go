// Package loader populates the compliance store from CSV exports. It is a
// collaborator of the validation engine, not part of it: the engine always
// assumes an already-populated store.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"csrep/database"
	"csrep/model"
)

// Source file names expected inside the configured source folder.
const (
	TransactionsFile = "transaction_data.csv"
	MastersFile      = "controlled_substance_master.csv"
	WarehousesFile   = "warehouse_data.csv"
	LicensesFile     = "customer_license_data.csv"
	MmeFile          = "ndc_mme_data.csv"
)

// LoadFolder imports every recognized CSV found in folder inside one
// transaction: either all present files load or none do. Missing files are
// skipped with a warning so partial data sets (e.g. no licenses yet) can
// still be staged.
func LoadFolder(db *sqlx.DB, folder string) error {
	return database.WithTransaction(db, func(tx *sqlx.Tx) error {
		loaders := []struct {
			file string
			load func(database.DBTX, string) (int, error)
		}{
			{MastersFile, loadMasters},
			{WarehousesFile, loadWarehouses},
			{LicensesFile, loadLicenses},
			{MmeFile, loadMmeData},
			{TransactionsFile, loadTransactions},
		}
		for _, l := range loaders {
			path := filepath.Join(folder, l.file)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				log.Printf("WARN: %s not found, skipping.", path)
				continue
			}
			n, err := l.load(tx, path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			log.Printf("Loaded %d rows from %s.", n, l.file)
		}
		return nil
	})
}

// openCSV opens a CSV file tolerating a UTF-8 or UTF-16 byte order mark,
// which ERP exports routinely carry.
func openCSV(path string) (*csv.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	r := csv.NewReader(transform.NewReader(f, decoder))
	r.TrimLeadingSpace = true
	return r, f.Close, nil
}

// eachRecord skips the header row and invokes fn for every data row.
func eachRecord(path string, fields int, fn func(rec []string) error) (int, error) {
	r, closeFile, err := openCSV(path)
	if err != nil {
		return 0, err
	}
	defer closeFile()

	r.FieldsPerRecord = fields
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	count := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read row %d: %w", count+2, err)
		}
		if err := fn(rec); err != nil {
			return count, fmt.Errorf("row %d: %w", count+2, err)
		}
		count++
	}
	return count, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func loadTransactions(dbtx database.DBTX, path string) (int, error) {
	return eachRecord(path, 15, func(rec []string) error {
		qty, err := parseFloat(rec[12])
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", rec[12], err)
		}
		t := model.TransactionData{
			TransactionID:            rec[0],
			ReportingRegistrantNum:   rec[1],
			TransactionCode:          rec[2],
			TransactionDate:          rec[3],
			ShipToCustomer:           rec[4],
			ShipToName:               rec[5],
			Address:                  rec[6],
			City:                     rec[7],
			State:                    rec[8],
			ZipCode:                  rec[9],
			DeaRegNbr:                rec[10],
			MaterialDescription:      rec[11],
			Quantity:                 qty,
			NdcNum:                   rec[13],
			ControlledSubstanceClass: rec[14],
		}
		return database.InsertTransaction(dbtx, &t)
	})
}

func loadMasters(dbtx database.DBTX, path string) (int, error) {
	return eachRecord(path, 10, func(rec []string) error {
		strength, err := parseFloat(rec[8])
		if err != nil {
			return fmt.Errorf("invalid cs_strength_mg %q: %w", rec[8], err)
		}
		m := model.ControlledSubstanceMaster{
			Ndc:                 rec[0],
			NdcNoDashes:         rec[1],
			MaterialNum:         rec[2],
			LabelDescription:    rec[3],
			IncludeInArcos:      rec[4],
			IncludeInDscsa:      rec[5],
			IncludeInMiState:    rec[6],
			IncludeInNyStateTax: rec[7],
			CsStrengthMg:        strength,
			Form:                rec[9],
		}
		return database.InsertControlledSubstanceMaster(dbtx, &m)
	})
}

func loadWarehouses(dbtx database.DBTX, path string) (int, error) {
	return eachRecord(path, 12, func(rec []string) error {
		w := model.WarehouseData{
			DeaNumber:        rec[0],
			TinNumber:        rec[1],
			CorporateName:    rec[2],
			CorporateAddress: rec[3],
			CorporateCity:    rec[4],
			CorporateState:   rec[5],
			CorporateZip:     rec[6],
			Address:          rec[7],
			City:             rec[8],
			State:            rec[9],
			Zip:              rec[10],
			BusinessActivity: rec[11],
		}
		return database.InsertWarehouse(dbtx, &w)
	})
}

func loadLicenses(dbtx database.DBTX, path string) (int, error) {
	return eachRecord(path, 5, func(rec []string) error {
		l := model.CustomerLicenseData{
			Customer:      rec[0],
			LicenseType:   rec[1],
			LicenseNumber: rec[2],
			ValidFrom:     rec[3],
			ValidTo:       rec[4],
		}
		return database.InsertCustomerLicense(dbtx, &l)
	})
}

func loadMmeData(dbtx database.DBTX, path string) (int, error) {
	return eachRecord(path, 3, func(rec []string) error {
		strength, err := parseFloat(rec[1])
		if err != nil {
			return fmt.Errorf("invalid strength_per_unit %q: %w", rec[1], err)
		}
		factor, err := parseFloat(rec[2])
		if err != nil {
			return fmt.Errorf("invalid mme_conversion_factor %q: %w", rec[2], err)
		}
		m := model.NdcMmeData{
			NineDigitNdc:        rec[0],
			StrengthPerUnit:     strength,
			MmeConversionFactor: factor,
		}
		return database.InsertNdcMmeData(dbtx, &m)
	})
}
