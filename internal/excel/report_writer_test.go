package excel

import (
	"path/filepath"
	"testing"
	"time"

	"settlement/internal/domain"

	"github.com/xuri/excelize/v2"
)

func strPtr(value string) *string {
	return &value
}

func TestWriteSalesReport(t *testing.T) {
	importTime := time.Date(2024, 5, 12, 9, 30, 0, 0, time.Local)
	rows := []domain.ExportRow{
		{
			Barcode:          "6901234567890",
			ProductName:      strPtr("矿泉水"),
			Quantity:         3,
			UnitPrice:        2.5,
			TotalAmount:      7.5,
			DeductionRate:    0.2,
			DeductionAmount:  1.5,
			SettlementAmount: 6.0,
			YearMonth:        "2024-05",
			ImportTime:       importTime,
			StoreName:        strPtr("一号店"),
			Operator:         strPtr("admin"),
		},
		{
			Barcode:    "0000000000000",
			Quantity:   1,
			YearMonth:  "2024-05",
			ImportTime: importTime,
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "report.xlsx")
	if err := WriteSalesReport(path, rows); err != nil {
		t.Fatalf("write report: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen report: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "销售数据" {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	got, err := file.GetRows("销售数据")
	if err != nil {
		t.Fatalf("read report rows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(got))
	}

	for i, want := range reportHeaders {
		if got[0][i] != want {
			t.Fatalf("header %d: got %q, want %q", i, got[0][i], want)
		}
	}

	if got[1][0] != "6901234567890" || got[1][1] != "矿泉水" {
		t.Fatalf("unexpected first data row: %v", got[1])
	}
	if got[1][9] != "2024-05-12 09:30:00" {
		t.Fatalf("unexpected import time cell: %q", got[1][9])
	}
	if got[1][10] != "一号店" || got[1][11] != "admin" {
		t.Fatalf("unexpected dimension cells: %v", got[1])
	}

	// Missing product shows an empty name cell.
	if readCell(got[2], 1) != "" {
		t.Fatalf("expected empty product name, got %q", readCell(got[2], 1))
	}
}

func TestWriteSalesReportEmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := WriteSalesReport(path, nil); err != nil {
		t.Fatalf("write empty report: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen report: %v", err)
	}
	defer file.Close()

	got, err := file.GetRows("销售数据")
	if err != nil {
		t.Fatalf("read report rows: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected header row only, got %d rows", len(got))
	}
}
