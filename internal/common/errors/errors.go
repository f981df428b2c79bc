// Package errors provides the standardized error taxonomy for the messaging hub.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Configuration errors: operator-visible misconfiguration, never retried
// automatically. Other targets of the same trigger still proceed.
const (
	ErrCodeTemplateNotFound      ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeChannelInactive       ErrorCode = "CHANNEL_INACTIVE"
	ErrCodeRecipientUnresolvable ErrorCode = "RECIPIENT_UNRESOLVABLE"
	ErrCodeEventInactive         ErrorCode = "EVENT_INACTIVE"
	ErrCodeRuleConflict          ErrorCode = "RULE_CONFLICT"
)

// Delivery errors: provider rejected or failed a send. Recorded on the log,
// eligible for escalation.
const (
	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
)

// Anomaly warnings: out-of-order or unknown delivery callbacks. Logged, never
// fatal to the caller.
const (
	ErrCodeCallbackOutOfOrder     ErrorCode = "CALLBACK_OUT_OF_ORDER"
	ErrCodeCallbackUnknownMessage ErrorCode = "CALLBACK_UNKNOWN_MESSAGE"
)

// Concurrency and storage errors.
const (
	ErrCodeStatusConflict       ErrorCode = "STATUS_CONFLICT"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
)

// HubError represents a structured application error.
type HubError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *HubError) Error() string {
	return fmt.Sprintf("HubError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Constructors
// ==========================

// NewTemplateNotFoundError reports a configured route with no matching template.
func NewTemplateNotFoundError(eventID, channelID, recipientType string) *HubError {
	return &HubError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "No active template for event, channel and recipient type",
		Details:   fmt.Sprintf("eventId: %s, channelId: %s, recipientType: %s", eventID, channelID, recipientType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelInactiveError reports a route or escalation pointing at a disabled channel.
func NewChannelInactiveError(channelID string) *HubError {
	return &HubError{
		Code:      ErrCodeChannelInactive,
		Message:   "Channel is inactive",
		Details:   fmt.Sprintf("channelId: %s", channelID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecipientUnresolvableError reports a target whose contact could not be resolved.
func NewRecipientUnresolvableError(recipientID, channelType string) *HubError {
	return &HubError{
		Code:      ErrCodeRecipientUnresolvable,
		Message:   "Recipient has no usable contact for channel",
		Details:   fmt.Sprintf("recipientId: %s, channelType: %s", recipientID, channelType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventInactiveError reports a trigger on a disabled or unknown event.
func NewEventInactiveError(eventID string) *HubError {
	return &HubError{
		Code:      ErrCodeEventInactive,
		Message:   "Event is inactive or unknown",
		Details:   fmt.Sprintf("eventId: %s", eventID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleConflictError reports contradictory routing/escalation configuration.
func NewRuleConflictError(details string) *HubError {
	return &HubError{
		Code:      ErrCodeRuleConflict,
		Message:   "Routing rule conflicts with escalation configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryFailedError wraps a provider send failure.
func NewDeliveryFailedError(channelType string, err error) *HubError {
	return &HubError{
		Code:      ErrCodeDeliveryFailed,
		Message:   "Provider rejected or failed the send",
		Details:   fmt.Sprintf("channelType: %s, error: %s", channelType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCallbackOutOfOrderError records a delivery callback older than the current status.
func NewCallbackOutOfOrderError(messageID, current, reported string) *HubError {
	return &HubError{
		Code:      ErrCodeCallbackOutOfOrder,
		Message:   "Delivery callback reports a state earlier than the current one",
		Details:   fmt.Sprintf("messageId: %s, current: %s, reported: %s", messageID, current, reported),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCallbackUnknownMessageError records a callback for a message the hub never sent.
func NewCallbackUnknownMessageError(messageID string) *HubError {
	return &HubError{
		Code:      ErrCodeCallbackUnknownMessage,
		Message:   "Delivery callback for unknown message",
		Details:   fmt.Sprintf("messageId: %s", messageID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStatusConflictError reports a racing status update that could not apply.
func NewStatusConflictError(messageID string) *HubError {
	return &HubError{
		Code:      ErrCodeStatusConflict,
		Message:   "Concurrent status update lost the race",
		Details:   fmt.Sprintf("messageId: %s", messageID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *HubError {
	return &HubError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", entity),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError wraps a storage failure.
func NewQueryExecutionFailedError(op string, err error) *HubError {
	return &HubError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Store query execution error",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Category Predicates
// ==========================

func codeOf(err error) (ErrorCode, bool) {
	var he *HubError
	if errors.As(err, &he) {
		return he.Code, true
	}
	return "", false
}

// IsConfiguration reports whether err is an operator-facing configuration error.
func IsConfiguration(err error) bool {
	switch code, ok := codeOf(err); {
	case !ok:
		return false
	case code == ErrCodeTemplateNotFound,
		code == ErrCodeChannelInactive,
		code == ErrCodeRecipientUnresolvable,
		code == ErrCodeEventInactive,
		code == ErrCodeRuleConflict:
		return true
	}
	return false
}

// IsDelivery reports whether err is a provider delivery failure.
func IsDelivery(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeDeliveryFailed
}

// IsAnomaly reports whether err is an out-of-order or unknown callback warning.
func IsAnomaly(err error) bool {
	code, ok := codeOf(err)
	return ok && (code == ErrCodeCallbackOutOfOrder || code == ErrCodeCallbackUnknownMessage)
}

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeNotFound
}
