package activity

import (
	"strconv"
	"strings"

	"daysheet/internal/model"
)

// Columns are the header names of the produced table, in order.
var Columns = []string{"Année", "Semaine", "Date", "Jour", "Résumé", "Début", "Fin"}

// Row is one output line, already formatted for a tabular writer.
type Row struct {
	Year    int
	Week    int
	Date    string
	Day     string
	Summary string
	Start   string
	End     string
}

// Strings returns the row's cells in column order.
func (r Row) Strings() []string {
	return []string{
		strconv.Itoa(r.Year), strconv.Itoa(r.Week), r.Date, r.Day, r.Summary, r.Start, r.End,
	}
}

// Rows formats records for the writers.
func Rows(records []model.DayRecord) []Row {
	out := make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{
			Year:    rec.Year(),
			Week:    rec.ISOWeek(),
			Date:    rec.Date.String(),
			Day:     rec.Weekday(),
			Summary: strings.Join(rec.Summary, "\n"),
		}
		if rec.Bounds != nil {
			row.Start = rec.Bounds.Start.String()
			row.End = rec.Bounds.End.String()
		}
		out = append(out, row)
	}
	return out
}
