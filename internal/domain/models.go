package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Store struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	DeductionRate float64 `json:"deduction_rate"`
}

type Product struct {
	Barcode string `json:"barcode"`
	Name    string `json:"name"`
}

// SalesRecord is the only entity this application creates. ProductName and
// DeductionRate are snapshots taken at import time; later changes to the
// products or stores tables do not affect existing records.
type SalesRecord struct {
	ID               int64     `json:"id"`
	Barcode          string    `json:"barcode"`
	ProductName      *string   `json:"product_name,omitempty"`
	Quantity         int       `json:"quantity"`
	UnitPrice        float64   `json:"unit_price"`
	TotalAmount      float64   `json:"total_amount"`
	DeductionRate    float64   `json:"deduction_rate"`
	DeductionAmount  float64   `json:"deduction_amount"`
	SettlementAmount float64   `json:"settlement_amount"`
	YearMonth        string    `json:"year_month"`
	ImportTime       time.Time `json:"import_time"`
	OperatorID       int64     `json:"operator_id"`
	StoreID          int64     `json:"store_id"`
}

// SalesLine is one positionally-unpacked data row from an uploaded file.
type SalesLine struct {
	Barcode   string  `json:"barcode"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// ExportRow is a SalesRecord joined with its dimension display fields.
// The joins are outer: a record survives a missing product, store or
// operator row, leaving the corresponding display field nil.
type ExportRow struct {
	Barcode          string    `json:"barcode"`
	ProductName      *string   `json:"product_name,omitempty"`
	Quantity         int       `json:"quantity"`
	UnitPrice        float64   `json:"unit_price"`
	TotalAmount      float64   `json:"total_amount"`
	DeductionRate    float64   `json:"deduction_rate"`
	DeductionAmount  float64   `json:"deduction_amount"`
	SettlementAmount float64   `json:"settlement_amount"`
	YearMonth        string    `json:"year_month"`
	ImportTime       time.Time `json:"import_time"`
	StoreName        *string   `json:"store_name,omitempty"`
	Operator         *string   `json:"operator,omitempty"`
}
