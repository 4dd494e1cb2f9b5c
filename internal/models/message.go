package models

// MessageChannel is the outbound channel a message travels on.
type MessageChannel string

const (
	ChannelSMS      MessageChannel = "sms"
	ChannelWhatsApp MessageChannel = "whatsapp"
	ChannelEmail    MessageChannel = "email"
)

// MessageGateway is an outbound channel provider selectable per message.
type MessageGateway struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Sender is a registered sender identity (short code, alphanumeric ID, ...).
type Sender struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// TemplateRef selects a template and fills its placeholders for one send.
type TemplateRef struct {
	ID   string                 `json:"id"`
	Data map[string]interface{} `json:"data"`
}

// SingleMessagePayload is the POST /messages/single request body. Either
// Template or Text carries the message content; the backend rejects
// payloads with neither.
type SingleMessagePayload struct {
	SenderCode       string       `json:"sender_code"`
	Phone            string       `json:"phone"`
	MessageGatewayID string       `json:"message_gateway_id"`
	Channel          string       `json:"channel,omitempty"`
	Template         *TemplateRef `json:"template,omitempty"`
	Text             string       `json:"text,omitempty"`
}

// SingleMessageReceipt is the record returned for an accepted single send.
type SingleMessageReceipt struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Phone     string `json:"phone"`
	MessageID string `json:"message_id"`
	CreatedAt string `json:"created_at"`
}

// MessageVerification is the delivery-state view of a single message.
type MessageVerification struct {
	Status    string `json:"status"`
	Phone     string `json:"phone"`
	MessageID string `json:"message_id"`
	CreatedAt string `json:"created_at"`
}
