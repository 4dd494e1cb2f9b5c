package models

// BulkMessageCsvStatus is the server-driven lifecycle of an uploaded batch.
type BulkMessageCsvStatus string

const (
	BulkStatusInitiated  BulkMessageCsvStatus = "initiated"
	BulkStatusProcessing BulkMessageCsvStatus = "processing"
	BulkStatusCompleted  BulkMessageCsvStatus = "completed"
	BulkStatusFailed     BulkMessageCsvStatus = "failed"
)

// Terminal reports whether the batch has reached a final state.
func (s BulkMessageCsvStatus) Terminal() bool {
	return s == BulkStatusCompleted || s == BulkStatusFailed
}

// BulkMessageMapping assigns CSV columns to message fields. A nil value
// leaves the column unmapped.
type BulkMessageMapping map[string]*string

// BulkMessageCsv is one uploaded batch. Status transitions are driven
// entirely server-side; the client only observes them via polling.
type BulkMessageCsv struct {
	ID               int64                `json:"id"`
	UserID           int64                `json:"user_id"`
	Filename         string               `json:"filename"`
	OriginalFilename string               `json:"original_filename"`
	Status           BulkMessageCsvStatus `json:"status"`
	TotalRows        int                  `json:"total_rows"`
	ProcessedRows    int                  `json:"processed_rows"`
	FailedRows       int                  `json:"failed_rows"`
	CreatedAt        string               `json:"created_at"`
	UpdatedAt        string               `json:"updated_at"`
}

// BulkMessageCsvDetails is the extended read-only view of a batch.
type BulkMessageCsvDetails struct {
	BulkMessageCsv

	Mapping        BulkMessageMapping     `json:"mapping,omitempty"`
	Summary        map[string]interface{} `json:"summary,omitempty"`
	FileURL        string                 `json:"file_url,omitempty"`
	ReportFileURL  string                 `json:"report_file_url,omitempty"`
	MessageGateway *MessageGateway        `json:"message_gateway,omitempty"`
	Sender         *Sender                `json:"sender,omitempty"`
	Template       *Template              `json:"template,omitempty"`
	User           *User                  `json:"user,omitempty"`
}

// BulkValidationResult is the outcome of POST /bulk-message-csvs/:id/validate.
// Validation does not move the batch to processing; it only reports row
// problems found server-side.
type BulkValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
