// internal/app/system/exportutil/print.go
package exportutil

import (
	"html/template"
	"net/http"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/monitorapi"
)

// stripTags removes any markup that rode along inside log fields before the
// values reach the document. html/template escapes on top of this; the
// policy keeps pasted HTML from surviving as literal tag soup in print.
var stripTags = bluemonday.StrictPolicy()

type printRow struct {
	Date        string
	Time        string
	Application string
	WindowTitle string
	Category    string
	Operation   string
	Details     string
}

type printDoc struct {
	Title    string
	Subtitle string
	Rows     []printRow
}

var printTmpl = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
h1 { font-size: 18px; }
p.subtitle { color: #555; }
table { border-collapse: collapse; width: 100%; font-size: 12px; }
th, td { border: 1px solid #ccc; padding: 4px 6px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body onload="window.print()">
<h1>{{.Title}}</h1>
<p class="subtitle">{{.Subtitle}}</p>
<table>
<thead>
<tr><th>Date</th><th>Time</th><th>Application</th><th>Window Title</th><th>Category</th><th>Operation</th><th>Details</th></tr>
</thead>
<tbody>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Time}}</td><td>{{.Application}}</td><td>{{.WindowTitle}}</td><td>{{.Category}}</td><td>{{.Operation}}</td><td>{{.Details}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// WritePrintableLogs renders the rows as a standalone HTML document that
// opens the browser's print dialog on load.
func WritePrintableLogs(w http.ResponseWriter, rows []monitorapi.LogRow, title, subtitle string, logger *zap.Logger) {
	doc := printDoc{
		Title:    title,
		Subtitle: subtitle,
		Rows:     make([]printRow, 0, len(rows)),
	}
	for _, row := range rows {
		day, clock := splitTimestamp(row)
		doc.Rows = append(doc.Rows, printRow{
			Date:        day,
			Time:        clock,
			Application: stripTags.Sanitize(row.Application),
			WindowTitle: stripTags.Sanitize(row.WindowTitle),
			Category:    stripTags.Sanitize(row.Category),
			Operation:   stripTags.Sanitize(row.Operation),
			Details:     stripTags.Sanitize(row.DetailText()),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := printTmpl.Execute(w, doc); err != nil {
		logger.Error("print document render failed", zap.Error(err))
	}
}
