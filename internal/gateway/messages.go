package gateway

import (
	"context"
	"fmt"
	"net/http"

	"mesagoo-console/internal/models"
)

// MessageGateways lists the channel providers messages can be routed through.
func (c *Client) MessageGateways(ctx context.Context) ([]models.MessageGateway, error) {
	var gateways []models.MessageGateway
	if err := c.do(ctx, "MessageGateways", http.MethodGet, "/message-gateways", nil, &gateways); err != nil {
		return nil, err
	}
	return gateways, nil
}

// Senders lists the registered sender identities.
func (c *Client) Senders(ctx context.Context) ([]models.Sender, error) {
	var senders []models.Sender
	if err := c.do(ctx, "Senders", http.MethodGet, "/senders", nil, &senders); err != nil {
		return nil, err
	}
	return senders, nil
}

// SendSingleMessage submits one message for delivery. The payload carries
// either a template reference or literal text; the gateway rejects payloads
// with neither.
func (c *Client) SendSingleMessage(ctx context.Context, payload models.SingleMessagePayload) (*models.SingleMessageReceipt, error) {
	var receipt models.SingleMessageReceipt
	if err := c.do(ctx, "SendSingleMessage", http.MethodPost, "/messages/single", payload, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// VerifyMessage fetches the delivery state of a previously sent message.
func (c *Client) VerifyMessage(ctx context.Context, id int64) (*models.MessageVerification, error) {
	var verification models.MessageVerification
	if err := c.do(ctx, "VerifyMessage", http.MethodGet, fmt.Sprintf("/messages/single/%d", id), nil, &verification); err != nil {
		return nil, err
	}
	return &verification, nil
}
