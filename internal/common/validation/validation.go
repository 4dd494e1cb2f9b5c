// Package validation checks user-supplied JSON payload files before they
// are sent to the gateway. Server-side validation still applies; this only
// catches malformed files early, with field-level messages.
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"mesagoo-console/internal/common/errors"
)

var singleMessageSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"sender_code", "phone", "message_gateway_id"},
	"properties": map[string]interface{}{
		"sender_code":        map[string]interface{}{"type": "string", "minLength": 1},
		"phone":              map[string]interface{}{"type": "string", "minLength": 1},
		"message_gateway_id": map[string]interface{}{"type": "string", "minLength": 1},
		"channel": map[string]interface{}{
			"type": "string",
			"enum": []string{"sms", "whatsapp", "email"},
		},
		"text": map[string]interface{}{"type": "string", "minLength": 1},
		"template": map[string]interface{}{
			"type":     "object",
			"required": []string{"id"},
			"properties": map[string]interface{}{
				"id":   map[string]interface{}{"type": "string", "minLength": 1},
				"data": map[string]interface{}{"type": "object"},
			},
		},
	},
	// Content comes from exactly one place.
	"anyOf": []interface{}{
		map[string]interface{}{"required": []string{"text"}},
		map[string]interface{}{"required": []string{"template"}},
	},
}

var templateInputSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"code", "label", "text"},
	"properties": map[string]interface{}{
		"code":      map[string]interface{}{"type": "string", "minLength": 1},
		"label":     map[string]interface{}{"type": "string", "minLength": 1},
		"text":      map[string]interface{}{"type": "string", "minLength": 1},
		"sender_id": map[string]interface{}{"type": "integer"},
		"data": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
}

// ValidateSingleMessage checks a decoded single-message payload file.
func ValidateSingleMessage(data map[string]interface{}) error {
	return validate(singleMessageSchema, data)
}

// ValidateTemplateInput checks a decoded template create/update file.
func ValidateTemplateInput(data map[string]interface{}) error {
	return validate(templateInputSchema, data)
}

func validate(schema, data map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}

	if !result.Valid() {
		descriptions := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			descriptions[i] = desc.String()
		}
		return errors.NewValidationError(strings.Join(descriptions, "; "))
	}
	return nil
}
