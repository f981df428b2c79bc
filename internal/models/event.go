package models

import "time"

type EventCategory string

const (
	CategoryApplication  EventCategory = "application"
	CategoryDocument     EventCategory = "document"
	CategoryVerification EventCategory = "verification"
	CategoryApproval     EventCategory = "approval"
	CategoryCompletion   EventCategory = "completion"
	CategoryReminder     EventCategory = "reminder"
)

type EventSeverity string

const (
	SeverityLow      EventSeverity = "low"
	SeverityMedium   EventSeverity = "medium"
	SeverityHigh     EventSeverity = "high"
	SeverityCritical EventSeverity = "critical"
)

// OnboardingEvent is a discrete onboarding lifecycle occurrence that can
// trigger messages. Code is the unique, immutable business key.
type OnboardingEvent struct {
	ID               string        `json:"id"`
	Code             string        `json:"code"`
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	Category         EventCategory `json:"category"`
	Severity         EventSeverity `json:"severity"`
	RequiresResponse bool          `json:"requiresResponse"`
	IsActive         bool          `json:"isActive"`
	CreatedAt        time.Time     `json:"createdAt"`
}
