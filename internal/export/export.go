// Package export renders unit and rent ledger listings as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/andalize/proptic/internal/service"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type column struct {
	header string
	width  float64
}

var unitColumns = []column{
	{"Project", 24},
	{"Unit", 12},
	{"Type", 12},
	{"Purpose", 14},
	{"Price", 12},
	{"For Rent", 10},
	{"For Sale", 10},
	{"Available", 10},
	{"Paid", 8},
	{"Paid At", 20},
	{"Tenant", 24},
	{"Tenant Email", 28},
	{"Tenancy Start", 14},
	{"Tenancy End", 14},
}

var rentColumns = []column{
	{"Transaction ID", 38},
	{"Tenancy ID", 38},
	{"Amount", 12},
	{"Method", 14},
	{"Status", 12},
	{"Period Start", 14},
	{"Period End", 14},
	{"Paid Days", 10},
	{"Receipt", 16},
	{"Recorded At", 20},
}

// Units renders one row per unit with its current tenant.
func Units(units []service.UnitView) ([]byte, error) {
	rows := make([][]any, 0, len(units))
	for _, u := range units {
		row := []any{
			u.PropertyProjectName,
			u.UnitName,
			u.UnitType,
			u.Purpose,
			u.Price,
			yesNo(u.ListedForRent),
			yesNo(u.ListedForSale),
			yesNo(u.Available),
			yesNo(u.Paid),
			formatTime(u.PaidAt),
			"", "", "", "",
		}
		if info := u.TenantInfo; info != nil {
			row[10] = info.FullName
			if info.Email != nil {
				row[11] = *info.Email
			}
			row[12] = info.TenancyStartDate.String()
			row[13] = info.TenancyEndDate.String()
		}
		rows = append(rows, row)
	}
	return workbook("Units", unitColumns, rows)
}

// RentLedger renders one row per rent transaction.
func RentLedger(txs []service.RentTransactionView) ([]byte, error) {
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		receipt := ""
		if tx.ReceiptNumber != nil {
			receipt = *tx.ReceiptNumber
		}
		recorded := tx.CreatedAt
		rows = append(rows, []any{
			tx.ID,
			tx.Tenancy,
			tx.Amount,
			strings.ReplaceAll(tx.Method, "_", " "),
			tx.Status,
			tx.PeriodStart.String(),
			tx.PeriodEnd.String(),
			tx.PaidDays,
			receipt,
			formatTime(&recorded),
		})
	}
	return workbook("Rent Ledger", rentColumns, rows)
}

func workbook(sheet string, columns []column, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, c := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, c.header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, c.width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
