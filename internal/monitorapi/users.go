// internal/monitorapi/users.go
package monitorapi

import (
	"context"
	"net/url"

	"github.com/nmercer/insighthub/internal/app/system/daterange"
	"github.com/nmercer/insighthub/internal/app/system/listnorm"
)

// UserQuery filters the monitored-user directory.
type UserQuery struct {
	Department string
	Search     string
}

// ListUsers fetches the monitored-user directory, whatever list shape the
// server answers with.
func (c *Client) ListUsers(ctx context.Context, token string, q UserQuery) ([]User, error) {
	v := url.Values{}
	if q.Department != "" {
		v.Set("department", q.Department)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	raw, err := c.get(ctx, token, "/api/users", v)
	if err != nil {
		return nil, err
	}
	return listnorm.DecodeItems[User](listnorm.Normalize(raw).Items), nil
}

// GetUser fetches one monitored user by company username.
func (c *Client) GetUser(ctx context.Context, token, companyUsername string) (User, error) {
	raw, err := c.get(ctx, token, "/api/users/"+url.PathEscape(companyUsername), nil)
	if err != nil {
		return User{}, err
	}
	var u User
	if err := decodeLoose(raw, &u); err == nil && u.CompanyUsername != "" {
		return u, nil
	}
	// single-record endpoints sometimes answer with a one-element list
	users := listnorm.DecodeItems[User](listnorm.Normalize(raw).Items)
	if len(users) > 0 {
		return users[0], nil
	}
	return User{}, &APIError{Message: "user not found"}
}

// UserAnalysis fetches the per-user KPI and chart aggregation. The key is the
// user's unique id (mac id or record id), never the email.
func (c *Client) UserAnalysis(ctx context.Context, token, key string, rng daterange.Range) (Analysis, error) {
	v := url.Values{}
	v.Set("user", key)
	if rng.From != "" {
		v.Set("from", rng.From)
	}
	if rng.To != "" {
		v.Set("to", rng.To)
	}
	raw, err := c.get(ctx, token, "/api/users/analysis", v)
	if err != nil {
		return Analysis{}, err
	}
	var a Analysis
	if err := decodeLoose(raw, &a); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// CreateUser registers a monitored user record.
func (c *Client) CreateUser(ctx context.Context, token string, fields map[string]any) error {
	_, err := c.post(ctx, token, "/api/users", fields)
	return err
}

// UpdateUser patches a monitored user record by company username.
func (c *Client) UpdateUser(ctx context.Context, token, companyUsername string, fields map[string]any) error {
	_, err := c.patch(ctx, token, "/api/users/"+url.PathEscape(companyUsername), fields)
	return err
}
