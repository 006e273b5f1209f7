// internal/monitorapi/data.go
package monitorapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/nmercer/insighthub/internal/app/system/daterange"
	"github.com/nmercer/insighthub/internal/app/system/listnorm"
)

// ListQuery scopes a paged logs or screenshots request. Exactly one identity
// field is normally set; empty fields are omitted from the wire query.
type ListQuery struct {
	Range           daterange.Range
	Page            int
	Limit           int
	UserMacID       string
	CompanyUsername string
	Department      string
	Search          string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Range.From != "" {
		v.Set("from", q.Range.From)
	}
	if q.Range.To != "" {
		v.Set("to", q.Range.To)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.UserMacID != "" {
		v.Set("user_mac_id", q.UserMacID)
		v.Set("user", q.UserMacID)
	}
	if q.CompanyUsername != "" {
		v.Set("company_username", q.CompanyUsername)
	}
	if q.Department != "" {
		v.Set("department", q.Department)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	return v
}

// Logs fetches one page of activity logs, normalized to items/total.
func (c *Client) Logs(ctx context.Context, token string, q ListQuery) (listnorm.PagedList, error) {
	raw, err := c.get(ctx, token, "/api/logs", q.values())
	if err != nil {
		return listnorm.PagedList{}, err
	}
	return listnorm.Normalize(raw), nil
}

// Screenshots fetches one page of screenshot records, normalized to
// items/total.
func (c *Client) Screenshots(ctx context.Context, token string, q ListQuery) (listnorm.PagedList, error) {
	raw, err := c.get(ctx, token, "/api/screenshots", q.values())
	if err != nil {
		return listnorm.PagedList{}, err
	}
	return listnorm.Normalize(raw), nil
}
