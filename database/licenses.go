package database

import (
	"database/sql"
	"fmt"

	"csrep/model"
)

func GetAllCustomerLicenses(dbtx DBTX) ([]model.CustomerLicenseData, error) {
	var licenses []model.CustomerLicenseData
	q := `SELECT id, customer, license_type, license_number, valid_from, valid_to
	      FROM customer_license_data ORDER BY customer, valid_from`
	if err := dbtx.Select(&licenses, q); err != nil {
		if err == sql.ErrNoRows {
			return []model.CustomerLicenseData{}, nil
		}
		return nil, fmt.Errorf("failed to select customer licenses: %w", err)
	}
	if licenses == nil {
		licenses = []model.CustomerLicenseData{}
	}
	return licenses, nil
}

func InsertCustomerLicense(dbtx DBTX, l *model.CustomerLicenseData) error {
	const q = `
	INSERT INTO customer_license_data (customer, license_type, license_number, valid_from, valid_to)
	VALUES (:customer, :license_type, :license_number, :valid_from, :valid_to)`
	if _, err := dbtx.NamedExec(q, l); err != nil {
		return fmt.Errorf("failed to insert customer license for %s: %w", l.Customer, err)
	}
	return nil
}
