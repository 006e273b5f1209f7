// internal/monitorapi/departments.go
package monitorapi

import (
	"context"

	"github.com/nmercer/insighthub/internal/app/system/listnorm"
)

// ListDepartments fetches the organizational units.
func (c *Client) ListDepartments(ctx context.Context, token string) ([]Department, error) {
	raw, err := c.get(ctx, token, "/api/departments", nil)
	if err != nil {
		return nil, err
	}
	return listnorm.DecodeItems[Department](listnorm.Normalize(raw).Items), nil
}

// CreateDepartment adds an organizational unit.
func (c *Client) CreateDepartment(ctx context.Context, token, name string) error {
	_, err := c.post(ctx, token, "/api/departments", map[string]string{"name": name})
	return err
}
