package sheet

import (
	_ "embed"
	"html/template"
	"io"
	"strings"

	"daysheet/internal/activity"
)

//go:embed templates/sheet.html.tmpl
var sheetTemplate string

var htmlTmpl = template.Must(template.New("sheet").Funcs(template.FuncMap{
	"lines": func(s string) []string {
		if s == "" {
			return nil
		}
		return strings.Split(s, "\n")
	},
}).Parse(sheetTemplate))

type htmlView struct {
	Columns []string
	Rows    []activity.Row
}

// WriteHTML renders a standalone page. The root element carries
// data-ready="true" so a headless browser knows rendering is complete.
func WriteHTML(w io.Writer, rows []activity.Row) error {
	return htmlTmpl.Execute(w, htmlView{Columns: activity.Columns, Rows: rows})
}
