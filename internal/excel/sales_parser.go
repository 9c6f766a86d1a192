package excel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"settlement/internal/domain"

	"github.com/xuri/excelize/v2"
)

// salesRowWidth is the fixed positional shape of an upload row:
// barcode, quantity, unit_price, total.
const salesRowWidth = 4

// ParseSalesRows decodes the first sheet of an uploaded workbook into
// sales lines. Row 1 is the header and is skipped; completely empty rows
// are ignored. Any other row that does not unpack into exactly four
// fields fails the whole batch.
func ParseSalesRows(reader io.Reader) ([]domain.SalesLine, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	result := make([]domain.SalesLine, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		if isEmptyRow(cells) {
			continue
		}
		if width := rowWidth(cells); width != salesRowWidth {
			return nil, fmt.Errorf("row %d has %d columns, expected %d (barcode, quantity, unit_price, total)", index+1, width, salesRowWidth)
		}

		barcode := strings.TrimSpace(readCell(cells, 0))
		if barcode == "" {
			return nil, fmt.Errorf("row %d has an empty barcode", index+1)
		}

		qty, err := parseInt(readCell(cells, 1))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid quantity: %w", index+1, err)
		}

		unitPrice, err := parseFloat(readCell(cells, 2))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid unit_price: %w", index+1, err)
		}

		total, err := parseFloat(readCell(cells, 3))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid total: %w", index+1, err)
		}

		result = append(result, domain.SalesLine{
			Barcode:   barcode,
			Quantity:  qty,
			UnitPrice: unitPrice,
			Total:     total,
		})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no data rows")
	}
	return result, nil
}

// rowWidth ignores trailing empty cells, which excelize may or may not
// include depending on how the sheet was produced.
func rowWidth(cells []string) int {
	width := len(cells)
	for width > 0 && strings.TrimSpace(cells[width-1]) == "" {
		width--
	}
	return width
}

func isEmptyRow(cells []string) bool {
	return rowWidth(cells) == 0
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseInt(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}

	asFloat, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.Mod(asFloat, 1) != 0 {
		return 0, fmt.Errorf("must be an integer")
	}
	return int(asFloat), nil
}

func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return parsed, nil
}
