package gateway

import (
	"context"
	"fmt"
	"net/http"

	"mesagoo-console/internal/models"
)

// ListTemplates returns every message template owned by the current user.
func (c *Client) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	if err := c.do(ctx, "ListTemplates", http.MethodGet, "/templates", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// GetTemplate fetches a single template by ID.
func (c *Client) GetTemplate(ctx context.Context, id int64) (*models.Template, error) {
	var template models.Template
	if err := c.do(ctx, "GetTemplate", http.MethodGet, fmt.Sprintf("/templates/%d", id), nil, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// CreateTemplate registers a new template and returns the stored record,
// including the server-assigned ID and extracted placeholder names.
func (c *Client) CreateTemplate(ctx context.Context, input models.TemplateInput) (*models.Template, error) {
	var template models.Template
	if err := c.do(ctx, "CreateTemplate", http.MethodPost, "/templates", input, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// UpdateTemplate replaces an existing template's fields.
func (c *Client) UpdateTemplate(ctx context.Context, id int64, input models.TemplateInput) (*models.Template, error) {
	var template models.Template
	if err := c.do(ctx, "UpdateTemplate", http.MethodPut, fmt.Sprintf("/templates/%d", id), input, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// DeleteTemplate removes a template. The gateway responds with no body.
func (c *Client) DeleteTemplate(ctx context.Context, id int64) error {
	return c.do(ctx, "DeleteTemplate", http.MethodDelete, fmt.Sprintf("/templates/%d", id), nil, nil)
}
