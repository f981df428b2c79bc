package models

// RecipientType distinguishes applicant-facing from staff-facing targets.
type RecipientType string

const (
	RecipientCustomer      RecipientType = "customer"
	RecipientInternalStaff RecipientType = "internal_staff"
)

// RoutingRule maps an event to a channel and recipient population. Lower
// priority values take precedence; equal priorities keep insertion order.
type RoutingRule struct {
	ID                       string        `json:"id"`
	EventID                  string        `json:"eventId"`
	ChannelID                string        `json:"channelId"`
	RecipientType            RecipientType `json:"recipientType"`
	Priority                 int           `json:"priority"`
	StaffRoleIDs             []string      `json:"staffRoleIds,omitempty"`
	WaitDaysBeforeEscalation int           `json:"waitDaysBeforeEscalation"`
	EscalationChannelID      string        `json:"escalationChannelId,omitempty"`
	IsActive                 bool          `json:"isActive"`
}

// EscalationRule is a directed edge in a per-event escalation graph:
// messages unanswered on FromChannelID for WaitDays move to ToChannelID.
type EscalationRule struct {
	ID            string `json:"id"`
	EventID       string `json:"eventId"`
	FromChannelID string `json:"fromChannelId"`
	ToChannelID   string `json:"toChannelId"`
	WaitDays      int    `json:"waitDays"`
	MaxAttempts   int    `json:"maxAttempts"`
	IsActive      bool   `json:"isActive"`
}
