package audit

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet      = "Audit"
	exportTimeLayout = "2006-01-02 15:04:05"
	exportColWidth   = 18
	defaultSheet     = "Sheet1"

	errExportSheetFmt = "failed to create export sheet: %w"
	errExportWriteFmt = "failed to write export: %w"
)

var exportColumns = []string{
	"Timestamp (UTC)", "Action", "User ID", "User Email", "Description",
	"Target User", "IP Address", "User Agent", "Success", "Error",
}

// ExportXLSX renders records as a spreadsheet, one row per record.
func ExportXLSX(records []Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf(errExportSheetFmt, err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet(defaultSheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, col)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for rowIdx, rec := range records {
		row := []any{
			rec.Timestamp.UTC().Format(exportTimeLayout),
			string(rec.Action),
			rec.UserID,
			rec.UserEmail,
			rec.Description,
			deref(rec.TargetUserEmail, deref(rec.TargetUserID, "")),
			rec.IPAddress,
			rec.UserAgent,
			rec.IsSuccessful,
			deref(rec.ErrorMessage, ""),
		}
		for colIdx, v := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, exportColWidth)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf(errExportWriteFmt, err)
	}
	return buf.Bytes(), nil
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
