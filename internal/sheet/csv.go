package sheet

import (
	"encoding/csv"
	"io"

	"daysheet/internal/activity"
)

// WriteCSV writes a header row then one record per row. Multi-line
// summaries are quoted.
func WriteCSV(w io.Writer, rows []activity.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(activity.Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
