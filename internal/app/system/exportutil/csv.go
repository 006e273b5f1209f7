// internal/app/system/exportutil/csv.go

// Package exportutil writes activity-log exports: CSV downloads and
// printable HTML documents.
package exportutil

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/monitorapi"
)

// logsHeader is the fixed column set of a logs export.
var logsHeader = []string{"Date", "Time", "application", "window_title", "category", "operation", "details"}

// WriteLogsCSV streams the rows as a CSV attachment named logs_<date>.csv.
// Output carries a UTF-8 BOM and CRLF line endings for Excel; field values
// are written verbatim so re-parsing the file reproduces the rows exactly,
// with commas, quotes and newlines handled by RFC 4180 quoting.
func WriteLogsCSV(w http.ResponseWriter, rows []monitorapi.LogRow, date string, logger *zap.Logger) {
	filename := fmt.Sprintf("logs_%s.csv", date)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	// UTF-8 BOM for Excel
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		logger.Error("CSV write failed (BOM)", zap.Error(err))
		return
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	defer cw.Flush()

	if err := cw.Write(logsHeader); err != nil {
		logger.Error("CSV write failed (header)", zap.Error(err))
		return
	}

	for _, row := range rows {
		day, clock := splitTimestamp(row)
		if err := cw.Write([]string{
			day,
			clock,
			row.Application,
			row.WindowTitle,
			row.Category,
			row.Operation,
			row.DetailText(),
		}); err != nil {
			logger.Error("CSV write failed (row)", zap.Error(err))
			return
		}
	}
}

// splitTimestamp splits a row's timestamp into UTC date and clock columns.
// An unparseable timestamp goes into the date column verbatim rather than
// dropping the row.
func splitTimestamp(row monitorapi.LogRow) (string, string) {
	t := row.Timestamp()
	if t.IsZero() {
		return row.TS, ""
	}
	t = t.UTC()
	return t.Format("2006-01-02"), t.Format("15:04:05")
}
