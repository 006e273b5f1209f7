// internal/monitorapi/types.go
package monitorapi

import (
	"encoding/json"
	"time"

	"github.com/nmercer/insighthub/internal/domain/models"
)

// LogRow is one activity log entry captured by the desktop agent.
type LogRow struct {
	TS              string `json:"ts"`
	CompanyUsername string `json:"company_username"`
	Department      string `json:"department"`
	UserMacID       string `json:"user_mac_id"`
	Application     string `json:"application"`
	WindowTitle     string `json:"window_title"`
	Category        string `json:"category"`
	Operation       string `json:"operation"`
	Details         string `json:"details"`
	Detail          string `json:"detail"` // legacy field name
}

// DetailText resolves the details column, preferring the current field name.
func (r LogRow) DetailText() string {
	if r.Details != "" {
		return r.Details
	}
	return r.Detail
}

// Timestamp parses the row's ts. A zero time means it did not parse.
func (r LogRow) Timestamp() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, r.TS); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Screenshot is one captured screenshot record.
type Screenshot struct {
	TS              string `json:"ts"`
	CompanyUsername string `json:"company_username"`
	UserMacID       string `json:"user_mac_id"`
	Application     string `json:"application"`
	WindowTitle     string `json:"window_title"`
	Label           string `json:"label"`
	Caption         string `json:"caption"`
	Path            string `json:"path"`
	ScreenshotURL   string `json:"screenshot_url"`
}

// URL resolves the viewable location, preferring the signed screenshot_url.
func (s Screenshot) URL() string {
	if s.ScreenshotURL != "" {
		return s.ScreenshotURL
	}
	return s.Path
}

// User is a monitored user record from /api/users.
type User struct {
	ID                  string `json:"_id"`
	CompanyUsername     string `json:"company_username"`
	CompanyUsernameNorm string `json:"company_username_norm"`
	FullName            string `json:"full_name"`
	Department          string `json:"department"`
	RoleKey             string `json:"role_key"`
	UserMacID           string `json:"user_mac_id"`
	ContactNo           string `json:"contact_no"`
	IsActive            bool   `json:"is_active"`
}

// UniqueID returns the collision-safe identity for scoping queries: the
// agent mac id when present, else the record id. Never the username.
func (u User) UniqueID() string {
	if u.UserMacID != "" {
		return u.UserMacID
	}
	return u.ID
}

// UsernameKey returns the normalized username when present.
func (u User) UsernameKey() string {
	if u.CompanyUsernameNorm != "" {
		return u.CompanyUsernameNorm
	}
	return u.CompanyUsername
}

// Selected converts the record into the session selection shape.
func (u User) Selected() *models.SelectedUser {
	return &models.SelectedUser{
		ID:              u.UniqueID(),
		CompanyUsername: u.UsernameKey(),
		FullName:        u.FullName,
		Department:      u.Department,
		RoleKey:         u.RoleKey,
	}
}

// Department is an organizational unit.
type Department struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// KPIMap holds the dashboard's named summary values. The server has renamed
// several keys over time, so lookups take an ordered list of candidates.
type KPIMap map[string]json.RawMessage

// Number resolves the first present numeric value among keys, else 0.
func (m KPIMap) Number(keys ...string) float64 {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f
		}
		// some deployments send numbers as strings
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			var f2 float64
			if err := json.Unmarshal([]byte(s), &f2); err == nil {
				return f2
			}
		}
	}
	return 0
}

// String resolves the first present non-empty string among keys, else "".
func (m KPIMap) String(keys ...string) string {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// LabelSeries is a per-day line/bar chart block.
type LabelSeries struct {
	Labels []string  `json:"labels"`
	Series []float64 `json:"series"`
}

// NamedCount is one bar/slice of a top-N or distribution block.
type NamedCount struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

// NamedCounts is an items-shaped chart block.
type NamedCounts struct {
	Items []NamedCount `json:"items"`
}

// Heatmap is the weekday-by-hour block, keyed "<Mon..Sun>_<0..23>".
type Heatmap struct {
	WeekHour map[string]float64 `json:"week_hour"`
}

// AppsTrend is the stacked per-app daily block: rows carry a "day" field plus
// one numeric field per app named in Keys.
type AppsTrend struct {
	Rows []map[string]json.RawMessage `json:"rows"`
	Keys []string                     `json:"keys"`
}

// WeekdaySeries is the active-by-weekday block.
type WeekdaySeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ChartSet is the fixed collection of named chart blocks the dashboard and
// per-user analysis endpoints return. Absent blocks decode to zero values.
type ChartSet struct {
	ActivityOverTime     LabelSeries   `json:"activity_over_time"`
	ScreenshotsOverTime  LabelSeries   `json:"screenshots_over_time"`
	TopApps              NamedCounts   `json:"top_apps"`
	TopCategories        NamedCounts   `json:"top_categories"`
	CategoryDistribution NamedCounts   `json:"category_distribution"`
	HourlyHeatmap        Heatmap       `json:"hourly_heatmap"`
	AppsTrend            AppsTrend     `json:"apps_trend"`
	ActiveByWeekday      WeekdaySeries `json:"active_by_weekday"`
}

// ScopeInfo describes what slice of the organization a payload covers.
type ScopeInfo struct {
	Label string `json:"label"`
}

// RangeInfo echoes the range the server aggregated over.
type RangeInfo struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DashboardPayload is the single aggregated response behind the overview and
// insights pages: KPIs plus the eight named chart blocks.
type DashboardPayload struct {
	Scope  ScopeInfo `json:"scope"`
	Range  RangeInfo `json:"range"`
	KPIs   KPIMap    `json:"kpis"`
	Charts ChartSet  `json:"charts"`
}

// Analysis is the per-user analysis response.
type Analysis struct {
	KPIs   KPIMap   `json:"kpis"`
	Charts ChartSet `json:"charts"`
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token   string
	Profile *models.UserProfile
}

// RegisterRequest creates a new console account.
type RegisterRequest struct {
	Email           string `json:"email"`
	CompanyUsername string `json:"company_username"`
	Password        string `json:"password"`
	Role            string `json:"role"`
	FullName        string `json:"full_name"`
	ContactNo       string `json:"contact_no"`
	Department      string `json:"department,omitempty"`
	LicenseAccepted bool   `json:"license_accepted"`
	LicenseVersion  string `json:"license_version"`
}
