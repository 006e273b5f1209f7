// internal/app/system/chartdata/chartdata.go

// Package chartdata maps the backend's chart blocks into view models the
// templates can render directly: zipped label/value points, percentage
// shares, a weekday-by-hour grid, and the per-app trend table.
package chartdata

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nmercer/insighthub/internal/monitorapi"
)

// Point is one labeled value of a line or bar chart.
type Point struct {
	Label string
	Value float64
}

// Series is a renderable sequence of points with the max precomputed for
// scaling bar widths.
type Series struct {
	Points []Point
	Max    float64
}

// Empty reports whether the series has nothing to draw.
func (s Series) Empty() bool { return len(s.Points) == 0 }

// Percent returns v as a 0-100 share of the series max.
func (s Series) Percent(v float64) float64 {
	if s.Max <= 0 {
		return 0
	}
	return v / s.Max * 100
}

// FromLabelSeries zips a labels/series block. Mismatched lengths are
// truncated to the shorter side rather than rejected.
func FromLabelSeries(ls monitorapi.LabelSeries) Series {
	n := len(ls.Labels)
	if len(ls.Series) < n {
		n = len(ls.Series)
	}
	out := Series{Points: make([]Point, 0, n)}
	for i := 0; i < n; i++ {
		v := ls.Series[i]
		out.Points = append(out.Points, Point{Label: ls.Labels[i], Value: v})
		if v > out.Max {
			out.Max = v
		}
	}
	return out
}

// FromNamedCounts converts a top-N block into a bar series, preserving the
// server's ordering.
func FromNamedCounts(nc monitorapi.NamedCounts) Series {
	out := Series{Points: make([]Point, 0, len(nc.Items))}
	for _, it := range nc.Items {
		out.Points = append(out.Points, Point{Label: it.Name, Value: it.Count})
		if it.Count > out.Max {
			out.Max = it.Count
		}
	}
	return out
}

// FromWeekdaySeries converts the active-by-weekday block into a bar series.
func FromWeekdaySeries(ws monitorapi.WeekdaySeries) Series {
	return FromLabelSeries(monitorapi.LabelSeries{Labels: ws.Labels, Series: ws.Data})
}

// Share is one slice of a distribution chart.
type Share struct {
	Name    string
	Count   float64
	Percent float64
}

// Shares converts a distribution block into percentage slices. A zero-sum
// block yields zero percentages, not NaN.
func Shares(nc monitorapi.NamedCounts) []Share {
	var sum float64
	for _, it := range nc.Items {
		sum += it.Count
	}
	out := make([]Share, 0, len(nc.Items))
	for _, it := range nc.Items {
		s := Share{Name: it.Name, Count: it.Count}
		if sum > 0 {
			s.Percent = it.Count / sum * 100
		}
		out = append(out, s)
	}
	return out
}

// heatDays is the row order of the weekday-by-hour grid.
var heatDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// HeatCell is one hour cell of the heatmap grid. Level quantizes the value
// into 0..4 for CSS intensity classes.
type HeatCell struct {
	Hour  int
	Value float64
	Level int
}

// HeatRow is one weekday row of 24 hour cells.
type HeatRow struct {
	Day   string
	Cells []HeatCell
}

// HeatmapGrid expands the sparse week_hour map into a full 7x24 grid keyed
// "<Day>_<hour>". Missing cells render as zero.
func HeatmapGrid(h monitorapi.Heatmap) []HeatRow {
	var max float64
	for _, v := range h.WeekHour {
		if v > max {
			max = v
		}
	}

	rows := make([]HeatRow, 0, len(heatDays))
	for _, day := range heatDays {
		row := HeatRow{Day: day, Cells: make([]HeatCell, 0, 24)}
		for hour := 0; hour < 24; hour++ {
			v := h.WeekHour[fmt.Sprintf("%s_%d", day, hour)]
			row.Cells = append(row.Cells, HeatCell{Hour: hour, Value: v, Level: level(v, max)})
		}
		rows = append(rows, row)
	}
	return rows
}

func level(v, max float64) int {
	if v <= 0 || max <= 0 {
		return 0
	}
	l := int(v/max*4) + 1
	if l > 4 {
		l = 4
	}
	return l
}

// TrendTable is the per-app daily counts laid out for a stacked chart or
// plain table: one row per day, one column per app.
type TrendTable struct {
	Apps []string
	Days []string
	Rows [][]float64
}

// Empty reports whether the table has nothing to draw.
func (t TrendTable) Empty() bool { return len(t.Rows) == 0 }

// TrendFromAppsTrend lays out the apps_trend block. App columns come from
// Keys when the server names them, else from the union of row fields minus
// the day column, sorted for stable output.
func TrendFromAppsTrend(at monitorapi.AppsTrend) TrendTable {
	apps := at.Keys
	if len(apps) == 0 {
		seen := map[string]struct{}{}
		for _, row := range at.Rows {
			for k := range row {
				if k == "day" {
					continue
				}
				seen[k] = struct{}{}
			}
		}
		for k := range seen {
			apps = append(apps, k)
		}
		sort.Strings(apps)
	}

	out := TrendTable{Apps: apps}
	for _, row := range at.Rows {
		var day string
		if raw, ok := row["day"]; ok {
			_ = json.Unmarshal(raw, &day)
		}
		counts := make([]float64, len(apps))
		for i, app := range apps {
			if raw, ok := row[app]; ok {
				var v float64
				if err := json.Unmarshal(raw, &v); err == nil {
					counts[i] = v
				}
			}
		}
		out.Days = append(out.Days, day)
		out.Rows = append(out.Rows, counts)
	}
	return out
}

// KPISet is the dashboard's headline numbers with legacy key fallbacks
// already resolved.
type KPISet struct {
	ActiveMinutes float64
	UniqueUsers   float64
	Logs          float64
	Screenshots   float64
	Apps          float64
	MostUsedApp   string
	TopCategory   string
	LastUpdated   string
}

// KPIs resolves the KPI map, preferring current key names and falling back
// to the names older backend versions used.
func KPIs(m monitorapi.KPIMap) KPISet {
	return KPISet{
		ActiveMinutes: m.Number("total_active_minutes", "active_minutes"),
		UniqueUsers:   m.Number("unique_users", "total_users"),
		Logs:          m.Number("logs", "total_logs"),
		Screenshots:   m.Number("screenshots", "total_screenshots"),
		Apps:          m.Number("apps", "total_apps"),
		MostUsedApp:   m.String("most_used_app", "top_app"),
		TopCategory:   m.String("top_category", "most_used_category"),
		LastUpdated:   m.String("last_updated", "updated_at"),
	}
}

// ChartsVM bundles every mapped chart block for the overview and insights
// templates.
type ChartsVM struct {
	ActivityOverTime     Series
	ScreenshotsOverTime  Series
	TopApps              Series
	TopCategories        Series
	CategoryDistribution []Share
	Heatmap              []HeatRow
	AppsTrend            TrendTable
	ActiveByWeekday      Series
}

// FromChartSet maps all blocks at once.
func FromChartSet(cs monitorapi.ChartSet) ChartsVM {
	return ChartsVM{
		ActivityOverTime:     FromLabelSeries(cs.ActivityOverTime),
		ScreenshotsOverTime:  FromLabelSeries(cs.ScreenshotsOverTime),
		TopApps:              FromNamedCounts(cs.TopApps),
		TopCategories:        FromNamedCounts(cs.TopCategories),
		CategoryDistribution: Shares(cs.CategoryDistribution),
		Heatmap:              HeatmapGrid(cs.HourlyHeatmap),
		AppsTrend:            TrendFromAppsTrend(cs.AppsTrend),
		ActiveByWeekday:      FromWeekdaySeries(cs.ActiveByWeekday),
	}
}
