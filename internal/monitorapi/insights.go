// internal/monitorapi/insights.go
package monitorapi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/nmercer/insighthub/internal/app/system/daterange"
)

// DashboardQuery scopes the aggregated dashboard request. C-suite leaves both
// identity fields empty; department roles set Department; a drill-down sets
// User to a unique id.
type DashboardQuery struct {
	Range      daterange.Range
	User       string
	Department string
}

func (q DashboardQuery) values() url.Values {
	v := url.Values{}
	if q.Range.From != "" {
		v.Set("from", q.Range.From)
	}
	if q.Range.To != "" {
		v.Set("to", q.Range.To)
	}
	if q.User != "" {
		v.Set("user", q.User)
	}
	if q.Department != "" {
		v.Set("department", q.Department)
	}
	return v
}

// Dashboard fetches the aggregated KPI and chart payload for a scope and
// range. Callers should treat IsNoData errors as an empty payload, not a
// failure.
func (c *Client) Dashboard(ctx context.Context, token string, q DashboardQuery) (DashboardPayload, error) {
	raw, err := c.get(ctx, token, "/api/insights/dashboard", q.values())
	if err != nil {
		return DashboardPayload{}, err
	}
	var p DashboardPayload
	if err := decodeLoose(raw, &p); err != nil {
		return DashboardPayload{}, err
	}
	return p, nil
}

// decodeLoose unmarshals an unwrapped payload, tolerating one extra level of
// {data:{...}} nesting that some endpoint generations still emit.
func decodeLoose(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &outer); err == nil && len(outer.Data) > 0 {
		if err := json.Unmarshal(outer.Data, v); err == nil {
			return nil
		}
	}
	return &APIError{Message: "malformed payload"}
}
