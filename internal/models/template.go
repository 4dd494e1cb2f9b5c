package models

// Template is a reusable message body with named placeholders. Data lists
// the placeholder variable names the template text expects.
type Template struct {
	ID        int64    `json:"id"`
	UserID    int64    `json:"user_id"`
	SenderID  *int64   `json:"sender_id"`
	Code      string   `json:"code"`
	Label     string   `json:"label"`
	Text      string   `json:"text"`
	Data      []string `json:"data"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// TemplateInput is the create/update request body. Only the writable
// fields travel to the backend; ownership and timestamps are server-side.
type TemplateInput struct {
	SenderID *int64   `json:"sender_id,omitempty"`
	Code     string   `json:"code"`
	Label    string   `json:"label"`
	Text     string   `json:"text"`
	Data     []string `json:"data,omitempty"`
}
