package sheet

import (
	"io"

	"github.com/xuri/excelize/v2"

	"daysheet/internal/activity"
)

// SheetName is the worksheet holding the table.
const SheetName = "Activité"

var colWidths = map[string]float64{
	"A": 8, "B": 9, "C": 12, "D": 6, "E": 90, "F": 8, "G": 8,
}

// WriteXLSX writes a workbook with one worksheet. The summary column wraps
// so each activity stays on its own line.
func WriteXLSX(w io.Writer, rows []activity.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]any, len(activity.Columns))
	for i, c := range activity.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Year, r.Week, r.Date, r.Day, r.Summary, r.Start, r.End}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	if err := styleSheet(f, len(rows)); err != nil {
		return err
	}
	return f.Write(w)
}

func styleSheet(f *excelize.File, n int) error {
	for col, width := range colWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetName, 1, 1, headerStyle); err != nil {
		return err
	}

	if n > 0 {
		wrapStyle, err := f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(activity.Columns), n+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName, "A2", last, wrapStyle); err != nil {
			return err
		}
	}

	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
