package model

// TransactionData is one distribution event imported from the ERP export.
// transaction_date is stored as ISO "2006-01-02".
type TransactionData struct {
	ID                      int     `db:"id" json:"id"`
	TransactionID           string  `db:"transaction_id" json:"transactionId"`
	ReportingRegistrantNum  string  `db:"reporting_registrant_num" json:"reportingRegistrantNum"`
	TransactionCode         string  `db:"transaction_code" json:"transactionCode"`
	TransactionDate         string  `db:"transaction_date" json:"transactionDate"`
	ShipToCustomer          string  `db:"ship_to_customer" json:"shipToCustomer"`
	ShipToName              string  `db:"ship_to_name" json:"shipToName"`
	Address                 string  `db:"address" json:"address"`
	City                    string  `db:"city" json:"city"`
	State                   string  `db:"state" json:"state"`
	ZipCode                 string  `db:"zip_code" json:"zipCode"`
	DeaRegNbr               string  `db:"dea_reg_nbr" json:"deaRegNbr"`
	MaterialDescription     string  `db:"material_description" json:"materialDescription"`
	Quantity                float64 `db:"quantity" json:"quantity"`
	NdcNum                  string  `db:"ndc_num" json:"ndcNum"`
	ControlledSubstanceClass string `db:"controlled_substance_class" json:"controlledSubstanceClass"`
}
