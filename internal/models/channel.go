package models

// ChannelType identifies a delivery medium.
type ChannelType string

const (
	ChannelEmail    ChannelType = "email"
	ChannelSMS      ChannelType = "sms"
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelTeams    ChannelType = "teams"
)

// Channel is a configured delivery medium. Inactive channels are never
// selected as routing or escalation targets.
type Channel struct {
	ID          string            `json:"id"`
	Type        ChannelType       `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	IsActive    bool              `json:"isActive"`
	Config      map[string]string `json:"config,omitempty"`
}
