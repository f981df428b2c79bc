package api

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// validatePayload checks a decoded request body against a JSON schema and
// returns the joined violation descriptions on failure.
func validatePayload(schema string, payload interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}
	return nil
}

const channelSchema = `{
	"type": "object",
	"required": ["type", "name"],
	"properties": {
		"type": {"type": "string", "enum": ["email", "sms", "whatsapp", "teams"]},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"isActive": {"type": "boolean"},
		"config": {"type": "object"}
	}
}`

const eventSchema = `{
	"type": "object",
	"required": ["code", "name", "category", "severity"],
	"properties": {
		"code": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"category": {"type": "string", "enum": ["application", "document", "verification", "approval", "completion", "reminder"]},
		"severity": {"type": "string", "enum": ["low", "medium", "high", "critical"]},
		"requiresResponse": {"type": "boolean"},
		"isActive": {"type": "boolean"}
	}
}`

const routingRuleSchema = `{
	"type": "object",
	"required": ["eventId", "channelId", "recipientType"],
	"properties": {
		"eventId": {"type": "string", "minLength": 1},
		"channelId": {"type": "string", "minLength": 1},
		"recipientType": {"type": "string", "enum": ["customer", "internal_staff"]},
		"priority": {"type": "integer", "minimum": 0},
		"staffRoleIds": {"type": "array", "items": {"type": "string"}},
		"waitDaysBeforeEscalation": {"type": "integer", "minimum": 0},
		"escalationChannelId": {"type": "string"},
		"isActive": {"type": "boolean"}
	}
}`

const escalationRuleSchema = `{
	"type": "object",
	"required": ["eventId", "fromChannelId", "toChannelId", "waitDays"],
	"properties": {
		"eventId": {"type": "string", "minLength": 1},
		"fromChannelId": {"type": "string", "minLength": 1},
		"toChannelId": {"type": "string", "minLength": 1},
		"waitDays": {"type": "integer", "minimum": 1},
		"maxAttempts": {"type": "integer", "minimum": 1},
		"isActive": {"type": "boolean"}
	}
}`

const templateSchema = `{
	"type": "object",
	"required": ["eventId", "channelId", "recipientType", "body"],
	"properties": {
		"eventId": {"type": "string", "minLength": 1},
		"channelId": {"type": "string", "minLength": 1},
		"recipientType": {"type": "string", "enum": ["customer", "internal_staff"]},
		"subject": {"type": "string"},
		"body": {"type": "string", "minLength": 1},
		"isActive": {"type": "boolean"}
	}
}`

const roleSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"permissions": {"type": "array", "items": {"type": "string"}},
		"isActive": {"type": "boolean"}
	}
}`

const staffSchema = `{
	"type": "object",
	"required": ["name", "email"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"email": {"type": "string", "minLength": 3},
		"phone": {"type": "string"},
		"roleIds": {"type": "array", "items": {"type": "string"}},
		"contactPreferences": {"type": "array", "items": {"type": "string", "enum": ["email", "sms", "whatsapp", "teams"]}},
		"isActive": {"type": "boolean"}
	}
}`

const triggerSchema = `{
	"type": "object",
	"required": ["applicationId"],
	"properties": {
		"eventId": {"type": "string"},
		"eventCode": {"type": "string"},
		"applicationId": {"type": "string", "minLength": 1}
	}
}`

const deliveryCallbackSchema = `{
	"type": "object",
	"required": ["messageId", "status"],
	"properties": {
		"messageId": {"type": "string", "minLength": 1},
		"status": {"type": "string", "enum": ["sent", "delivered", "opened", "clicked", "replied", "failed", "bounced"]},
		"timestamp": {"type": "string"},
		"reason": {"type": "string"}
	}
}`
