package excel

import (
	"fmt"
	"os"
	"path/filepath"

	"settlement/internal/domain"

	"github.com/xuri/excelize/v2"
)

const reportSheetName = "销售数据"

// reportHeaders is the fixed 12-column layout of an exported report.
var reportHeaders = []string{
	"商品条码", "商品名称", "销售数量", "销售单价", "销售金额",
	"扣点比例", "扣点金额", "结算金额", "年月", "导入时间",
	"客户名称", "操作员",
}

const importTimeLayout = "2006-01-02 15:04:05"

// WriteSalesReport serializes the rows to a new workbook at path,
// preserving the slice order. The parent directory is created if needed.
func WriteSalesReport(path string, rows []domain.ExportRow) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet, err := file.NewSheet(reportSheetName)
	if err != nil {
		return fmt.Errorf("create report sheet: %w", err)
	}
	file.SetActiveSheet(sheet)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, len(reportHeaders))
	for i, name := range reportHeaders {
		header[i] = name
	}
	if err := file.SetSheetRow(reportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report row %d: %w", i+2, err)
		}
		values := []any{
			row.Barcode,
			derefString(row.ProductName),
			row.Quantity,
			row.UnitPrice,
			row.TotalAmount,
			row.DeductionRate,
			row.DeductionAmount,
			row.SettlementAmount,
			row.YearMonth,
			row.ImportTime.Format(importTimeLayout),
			derefString(row.StoreName),
			derefString(row.Operator),
		}
		if err := file.SetSheetRow(reportSheetName, cell, &values); err != nil {
			return fmt.Errorf("write report row %d: %w", i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
