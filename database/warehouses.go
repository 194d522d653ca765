package database

import (
	"database/sql"
	"fmt"

	"csrep/model"
)

func GetAllWarehouses(dbtx DBTX) ([]model.WarehouseData, error) {
	var warehouses []model.WarehouseData
	q := `SELECT dea_number, tin_number, corporate_name, corporate_address,
	       corporate_city, corporate_state, corporate_zip,
	       address, city, state, zip, business_activity
	      FROM warehouse_data ORDER BY dea_number`
	if err := dbtx.Select(&warehouses, q); err != nil {
		if err == sql.ErrNoRows {
			return []model.WarehouseData{}, nil
		}
		return nil, fmt.Errorf("failed to select warehouses: %w", err)
	}
	if warehouses == nil {
		warehouses = []model.WarehouseData{}
	}
	return warehouses, nil
}

// UpdateWarehouseTin writes a canonicalized TIN back to one warehouse row.
// One of the two mutations the validation run is allowed to make.
func UpdateWarehouseTin(dbtx DBTX, deaNumber, tin string) error {
	const q = `UPDATE warehouse_data SET tin_number = ? WHERE dea_number = ?`
	if _, err := dbtx.Exec(q, tin, deaNumber); err != nil {
		return fmt.Errorf("failed to update tin_number for %s: %w", deaNumber, err)
	}
	return nil
}

func InsertWarehouse(dbtx DBTX, w *model.WarehouseData) error {
	const q = `
	INSERT INTO warehouse_data (
		dea_number, tin_number, corporate_name, corporate_address,
		corporate_city, corporate_state, corporate_zip,
		address, city, state, zip, business_activity
	) VALUES (
		:dea_number, :tin_number, :corporate_name, :corporate_address,
		:corporate_city, :corporate_state, :corporate_zip,
		:address, :city, :state, :zip, :business_activity
	)`
	if _, err := dbtx.NamedExec(q, w); err != nil {
		return fmt.Errorf("failed to insert warehouse %s: %w", w.DeaNumber, err)
	}
	return nil
}
