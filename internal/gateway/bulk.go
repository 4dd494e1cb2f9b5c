package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mesagoo-console/internal/common/errors"
	"mesagoo-console/internal/models"
)

// UploadRequest is the multipart form posted to create a bulk batch. The
// CSV itself plus the routing configuration travel in one request; the
// column mapping is serialized to a JSON form field.
type UploadRequest struct {
	File     io.Reader
	Filename string

	MessageGatewayID int64
	SenderID         int64
	TemplateID       int64
	Mapping          models.BulkMessageMapping
}

// BulkListFilter selects batches for ListBulkCSVs. Nil fields are omitted
// from the query string entirely, not sent as empty values.
type BulkListFilter struct {
	Status  *models.BulkMessageCsvStatus
	Page    *int
	PerPage *int
}

func (f *BulkListFilter) encode() string {
	if f == nil {
		return ""
	}
	values := url.Values{}
	if f.Status != nil {
		values.Set("status", string(*f.Status))
	}
	if f.Page != nil {
		values.Set("page", strconv.Itoa(*f.Page))
	}
	if f.PerPage != nil {
		values.Set("per_page", strconv.Itoa(*f.PerPage))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// UploadBulkCSV uploads a CSV and creates a batch in the initiated state.
func (c *Client) UploadBulkCSV(ctx context.Context, req UploadRequest) (*models.BulkMessageCsv, error) {
	if req.File == nil {
		return nil, errors.NewValidationError("upload file is required")
	}

	fields := map[string]string{
		"message_gateway_id": strconv.FormatInt(req.MessageGatewayID, 10),
		"sender_id":          strconv.FormatInt(req.SenderID, 10),
	}
	if req.TemplateID != 0 {
		fields["template_id"] = strconv.FormatInt(req.TemplateID, 10)
	}
	if len(req.Mapping) > 0 {
		mapping, err := json.Marshal(req.Mapping)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("encode column mapping: %s", err))
		}
		fields["mapping"] = string(mapping)
	}

	var batch models.BulkMessageCsv
	if err := c.upload(ctx, "UploadBulkCSV", "/bulk-message-csvs", "file", req.Filename, req.File, fields, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ValidateBulkCSV asks the server to check the batch rows without
// processing them. The batch stays in its current state.
func (c *Client) ValidateBulkCSV(ctx context.Context, id int64) (*models.BulkValidationResult, error) {
	var result models.BulkValidationResult
	if err := c.do(ctx, "ValidateBulkCSV", http.MethodPost, fmt.Sprintf("/bulk-message-csvs/%d/validate", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessBulkCSV starts server-side delivery of the batch.
func (c *Client) ProcessBulkCSV(ctx context.Context, id int64) (*models.BulkMessageCsv, error) {
	var batch models.BulkMessageCsv
	if err := c.do(ctx, "ProcessBulkCSV", http.MethodPost, fmt.Sprintf("/bulk-message-csvs/%d/process", id), nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// BulkCSVStatus fetches the current batch record for progress polling.
func (c *Client) BulkCSVStatus(ctx context.Context, id int64) (*models.BulkMessageCsv, error) {
	var batch models.BulkMessageCsv
	if err := c.do(ctx, "BulkCSVStatus", http.MethodGet, fmt.Sprintf("/bulk-message-csvs/%d", id), nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// BulkCSVDetails fetches the extended view including mapping, summary and
// file URLs.
func (c *Client) BulkCSVDetails(ctx context.Context, id int64) (*models.BulkMessageCsvDetails, error) {
	var details models.BulkMessageCsvDetails
	if err := c.do(ctx, "BulkCSVDetails", http.MethodGet, fmt.Sprintf("/bulk-message-csvs/%d", id), nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// ListBulkCSVs lists batches. A nil filter lists everything.
func (c *Client) ListBulkCSVs(ctx context.Context, filter *BulkListFilter) ([]models.BulkMessageCsv, error) {
	var batches []models.BulkMessageCsv
	if err := c.do(ctx, "ListBulkCSVs", http.MethodGet, "/bulk-message-csvs"+filter.encode(), nil, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

// AwaitBulkCSV polls the batch until it reaches completed or failed, or the
// context is cancelled. Progress between polls is logged; the terminal
// record is returned. The server drives all state transitions, so the only
// way out of processing is another poll.
func (c *Client) AwaitBulkCSV(ctx context.Context, id int64, interval time.Duration) (*models.BulkMessageCsv, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		batch, err := c.BulkCSVStatus(ctx, id)
		if err != nil {
			return nil, err
		}

		c.logger.Info("bulk batch progress", map[string]interface{}{
			"id":            batch.ID,
			"status":        string(batch.Status),
			"processedRows": batch.ProcessedRows,
			"totalRows":     batch.TotalRows,
			"failedRows":    batch.FailedRows,
		})

		if batch.Status.Terminal() {
			return batch, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
