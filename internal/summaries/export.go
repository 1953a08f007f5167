package summaries

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/inspector/internal/inspections"
)

const exportSheet = "Summaries"

var exportHeader = []string{
	"Inspection",
	"Inspection Date",
	"Purchase Order",
	"Series",
	"Product Code",
	"Order Qty",
	"Lot Qty",
	"Sample Qty",
	"Inspector",
	"Unit Rejects",
	"Total Rejects",
	"Disposition",
	"Completed",
}

var exportWidths = []float64{14, 14, 18, 10, 20, 10, 10, 10, 18, 12, 12, 12, 20}

func exportRow(s Summary) []any {
	return []any{
		s.InspectionID,
		s.InspectionDate.Format(inspections.DateLayout),
		s.PORelease(),
		s.Series,
		s.ProductCode,
		s.OrderQty,
		s.LotQty,
		s.SampleQty,
		s.Inspector,
		s.UnitRejects,
		s.AllRejects,
		s.Disposition,
		s.CompletedDate.Format("2006-01-02 15:04"),
	}
}

// workbook renders summaries as a single-sheet XLSX file with a styled header row.
func workbook(items []Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", last, style); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, w := range exportWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for i, s := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(s)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
