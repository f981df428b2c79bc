package models

import "time"

// MessageStatus is the delivery-status state machine of a MessageLog.
// Transitions only move forward:
// queued → sent → {delivered|failed|bounced} → opened → clicked → replied.
type MessageStatus string

const (
	MessageQueued    MessageStatus = "queued"
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageOpened    MessageStatus = "opened"
	MessageClicked   MessageStatus = "clicked"
	MessageReplied   MessageStatus = "replied"
	MessageFailed    MessageStatus = "failed"
	MessageBounced   MessageStatus = "bounced"
)

// statusRank orders statuses along the forward-only machine. failed and
// bounced share the rank of delivered: they replace it, and nothing but the
// response states may follow a failure report (which never happens for a
// bounce, so bounced is terminal).
var statusRank = map[MessageStatus]int{
	MessageQueued:    0,
	MessageSent:      1,
	MessageDelivered: 2,
	MessageFailed:    2,
	MessageBounced:   2,
	MessageOpened:    3,
	MessageClicked:   4,
	MessageReplied:   5,
}

// Rank returns the status position in the state machine, -1 for unknown.
func (s MessageStatus) Rank() int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

// IsTerminal reports whether the log is immutable from here on.
func (s MessageStatus) IsTerminal() bool {
	return s == MessageReplied || s == MessageBounced
}

// IsResponse reports whether the recipient has reacted to the message, which
// cancels any pending escalation.
func (s MessageStatus) IsResponse() bool {
	return s == MessageOpened || s == MessageClicked || s == MessageReplied
}

// MessageLog is the audit-trail row for one message to one recipient. Rows
// are never deleted; non-terminal rows are mutated in place as delivery
// callbacks arrive.
type MessageLog struct {
	ID                string        `json:"id"`
	ApplicationID     string        `json:"applicationId"`
	EventID           string        `json:"eventId"`
	ChannelID         string        `json:"channelId"`
	ChannelType       ChannelType   `json:"channelType"`
	RecipientType     RecipientType `json:"recipientType"`
	RecipientID       string        `json:"recipientId"`
	RecipientName     string        `json:"recipientName,omitempty"`
	RecipientContact  string        `json:"recipientContact"`
	TemplateID        string        `json:"templateId,omitempty"`
	Subject           string        `json:"subject,omitempty"`
	Body              string        `json:"body"`
	Status            MessageStatus `json:"status"`
	ProviderMessageID string        `json:"providerMessageId,omitempty"`
	SentAt            time.Time     `json:"sentAt"`
	DeliveredAt       *time.Time    `json:"deliveredAt,omitempty"`
	OpenedAt          *time.Time    `json:"openedAt,omitempty"`
	RepliedAt         *time.Time    `json:"repliedAt,omitempty"`
	FailureReason     string        `json:"failureReason,omitempty"`
	EscalatedFrom     string        `json:"escalatedFrom,omitempty"`
	EscalationAttempt int           `json:"escalationAttempt"`
}

// Target is a resolved (channel, recipient) pair selected for an event firing.
type Target struct {
	ChannelID        string        `json:"channelId"`
	ChannelType      ChannelType   `json:"channelType"`
	RecipientType    RecipientType `json:"recipientType"`
	RecipientID      string        `json:"recipientId"`
	RecipientName    string        `json:"recipientName"`
	RecipientContact string        `json:"recipientContact"`
	Priority         int           `json:"priority"`
	RuleID           string        `json:"ruleId"`
}
