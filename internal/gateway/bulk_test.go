package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gatewayerrors "mesagoo-console/internal/common/errors"
	"mesagoo-console/internal/models"
)

func statusPtr(s models.BulkMessageCsvStatus) *models.BulkMessageCsvStatus { return &s }
func intPtr(i int) *int                                                    { return &i }

func TestBulkListFilter_Encode(t *testing.T) {
	tests := []struct {
		name   string
		filter *BulkListFilter
		want   string
	}{
		{
			name:   "nil filter",
			filter: nil,
			want:   "",
		},
		{
			name:   "empty filter",
			filter: &BulkListFilter{},
			want:   "",
		},
		{
			name:   "unset status is omitted, not sent empty",
			filter: &BulkListFilter{Status: nil, Page: intPtr(2)},
			want:   "?page=2",
		},
		{
			name: "all fields set",
			filter: &BulkListFilter{
				Status:  statusPtr(models.BulkStatusProcessing),
				Page:    intPtr(1),
				PerPage: intPtr(25),
			},
			want: "?page=1&per_page=25&status=processing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.encode())
		})
	}
}

func TestUploadBulkCSV(t *testing.T) {
	csvContent := "phone,name\n+998901234567,Ada\n+998907654321,Alan\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/bulk-message-csvs", r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "contacts.csv", header.Filename)

		uploaded, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, csvContent, string(uploaded))

		assert.Equal(t, "3", r.FormValue("message_gateway_id"))
		assert.Equal(t, "4", r.FormValue("sender_id"))
		assert.Equal(t, "12", r.FormValue("template_id"))

		var mapping models.BulkMessageMapping
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("mapping")), &mapping))
		require.NotNil(t, mapping["phone"])
		assert.Equal(t, "phone", *mapping["phone"])
		assert.Nil(t, mapping["name"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"id": 9, "status": "initiated", "original_filename": "contacts.csv", "total_rows": 2}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	phoneField := "phone"
	batch, err := client.UploadBulkCSV(context.Background(), UploadRequest{
		File:             strings.NewReader(csvContent),
		Filename:         "contacts.csv",
		MessageGatewayID: 3,
		SenderID:         4,
		TemplateID:       12,
		Mapping: models.BulkMessageMapping{
			"phone": &phoneField,
			"name":  nil,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), batch.ID)
	assert.Equal(t, models.BulkStatusInitiated, batch.Status)
	assert.Equal(t, 2, batch.TotalRows)
}

func TestUploadBulkCSV_MissingFile(t *testing.T) {
	client, _ := newTestClient(t, "http://unused", "tok")

	_, err := client.UploadBulkCSV(context.Background(), UploadRequest{Filename: "x.csv"})
	require.Error(t, err)

	var stdErr *gatewayerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, gatewayerrors.ErrCodeValidationFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "upload file is required")
}

func TestValidateBulkCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/bulk-message-csvs/9/validate", r.URL.Path)
		w.Write([]byte(`{"data": {"valid": false, "errors": ["row 14: phone is empty"], "warnings": ["row 3: duplicate phone"]}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	result, err := client.ValidateBulkCSV(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"row 14: phone is empty"}, result.Errors)
	assert.Equal(t, []string{"row 3: duplicate phone"}, result.Warnings)
}

// TestBulkWorkflow drives the whole lifecycle against a stateful fake
// server: upload, validate, process, then poll until the terminal state.
func TestBulkWorkflow(t *testing.T) {
	var mu sync.Mutex
	status := models.BulkStatusInitiated
	processed := 0
	polls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/bulk-message-csvs":
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"data": {"id": 9, "status": "initiated", "total_rows": 4}}`)

		case r.Method == http.MethodPost && r.URL.Path == "/bulk-message-csvs/9/validate":
			w.Write([]byte(`{"data": {"valid": true}}`))

		case r.Method == http.MethodPost && r.URL.Path == "/bulk-message-csvs/9/process":
			status = models.BulkStatusProcessing
			fmt.Fprintf(w, `{"data": {"id": 9, "status": "processing", "total_rows": 4, "processed_rows": 0}}`)

		case r.Method == http.MethodGet && r.URL.Path == "/bulk-message-csvs/9":
			polls++
			if status == models.BulkStatusProcessing {
				processed += 2
				if processed >= 4 {
					processed = 4
					status = models.BulkStatusCompleted
				}
			}
			fmt.Fprintf(w, `{"data": {"id": 9, "status": %q, "total_rows": 4, "processed_rows": %d, "failed_rows": 0}}`, status, processed)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")
	ctx := context.Background()

	batch, err := client.UploadBulkCSV(ctx, UploadRequest{
		File:             strings.NewReader("phone\n+1\n+2\n+3\n+4\n"),
		Filename:         "contacts.csv",
		MessageGatewayID: 3,
		SenderID:         4,
	})
	require.NoError(t, err)
	require.Equal(t, models.BulkStatusInitiated, batch.Status)

	validation, err := client.ValidateBulkCSV(ctx, batch.ID)
	require.NoError(t, err)
	require.True(t, validation.Valid)

	processing, err := client.ProcessBulkCSV(ctx, batch.ID)
	require.NoError(t, err)
	require.Equal(t, models.BulkStatusProcessing, processing.Status)

	// Poll to the terminal state, checking processed_rows never decreases.
	lastProcessed := -1
	for {
		current, err := client.BulkCSVStatus(ctx, batch.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, current.ProcessedRows, lastProcessed,
			"processed_rows went backwards")
		lastProcessed = current.ProcessedRows
		if current.Status.Terminal() {
			assert.Equal(t, models.BulkStatusCompleted, current.Status)
			assert.Equal(t, 4, current.ProcessedRows)
			break
		}
	}
	assert.GreaterOrEqual(t, polls, 2)
}

func TestAwaitBulkCSV(t *testing.T) {
	var mu sync.Mutex
	polls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		polls++
		if polls < 3 {
			fmt.Fprintf(w, `{"data": {"id": 9, "status": "processing", "total_rows": 4, "processed_rows": %d}}`, polls)
			return
		}
		w.Write([]byte(`{"data": {"id": 9, "status": "completed", "total_rows": 4, "processed_rows": 4}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	batch, err := client.AwaitBulkCSV(context.Background(), 9, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, models.BulkStatusCompleted, batch.Status)
	assert.Equal(t, 4, batch.ProcessedRows)

	mu.Lock()
	assert.Equal(t, 3, polls)
	mu.Unlock()
}

func TestAwaitBulkCSV_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"id": 9, "status": "processing", "total_rows": 4, "processed_rows": 1}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.AwaitBulkCSV(ctx, 9, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBulkCSVDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bulk-message-csvs/9", r.URL.Path)
		w.Write([]byte(`{
			"data": {
				"id": 9,
				"status": "completed",
				"total_rows": 4,
				"processed_rows": 4,
				"mapping": {"phone": "phone", "name": null},
				"summary": {"delivered": 3, "failed": 1},
				"report_file_url": "https://files.example.com/report-9.csv",
				"message_gateway": {"id": 3, "code": "eskiz", "label": "Eskiz SMS"},
				"sender": {"id": 4, "code": "INFO-SMS", "label": "Info sender"}
			}
		}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	details, err := client.BulkCSVDetails(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, models.BulkStatusCompleted, details.Status)
	require.NotNil(t, details.Mapping["phone"])
	assert.Equal(t, "phone", *details.Mapping["phone"])
	assert.Nil(t, details.Mapping["name"])
	assert.Equal(t, "https://files.example.com/report-9.csv", details.ReportFileURL)
	require.NotNil(t, details.MessageGateway)
	assert.Equal(t, "eskiz", details.MessageGateway.Code)
}

func TestListBulkCSVs_FilterInQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data": [{"id": 9, "status": "completed"}]}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, "tok")

	batches, err := client.ListBulkCSVs(context.Background(), &BulkListFilter{
		Status: statusPtr(models.BulkStatusCompleted),
		Page:   intPtr(2),
	})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "page=2&status=completed", gotQuery)
}
