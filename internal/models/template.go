package models

import "time"

// MessageTemplate holds the renderable content for one
// (event, channel, recipientType) key. At most one active template should
// exist per key; the most recently updated wins when several match.
type MessageTemplate struct {
	ID            string        `json:"id"`
	EventID       string        `json:"eventId"`
	ChannelID     string        `json:"channelId"`
	RecipientType RecipientType `json:"recipientType"`
	Subject       string        `json:"subject,omitempty"`
	Body          string        `json:"body"`
	Variables     []string      `json:"variables,omitempty"` // derived from body+subject, not authoritative
	IsActive      bool          `json:"isActive"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Content is the rendered output handed to a channel sender.
type Content struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}
