package models

import "time"

type ApplicationStatus string

const (
	StatusSubmitted              ApplicationStatus = "submitted"
	StatusDocumentsPending       ApplicationStatus = "documents_pending"
	StatusDocumentsReceived      ApplicationStatus = "documents_received"
	StatusUnderReview            ApplicationStatus = "under_review"
	StatusAdditionalInfoRequired ApplicationStatus = "additional_info_required"
	StatusApproved               ApplicationStatus = "approved"
	StatusRejected               ApplicationStatus = "rejected"
	StatusCompleted              ApplicationStatus = "completed"
)

// IsTerminal reports whether the onboarding workflow is finished for this
// status. Pending escalations are cancelled once an application is terminal.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCompleted
}

// Application is owned by the onboarding workflow; the hub reads it for
// recipient contact details and terminal-status checks.
type Application struct {
	ID              string                 `json:"id"`
	ApplicantName   string                 `json:"applicantName"`
	ApplicantEmail  string                 `json:"applicantEmail"`
	ApplicantPhone  string                 `json:"applicantPhone"`
	Type            string                 `json:"type"`
	Status          ApplicationStatus      `json:"status"`
	SubmittedAt     time.Time              `json:"submittedAt"`
	LastUpdatedAt   time.Time              `json:"lastUpdatedAt"`
	AssignedStaffID string                 `json:"assignedStaffId,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// ContactFor returns the applicant's address for a channel type.
func (a Application) ContactFor(ct ChannelType) (string, bool) {
	switch ct {
	case ChannelEmail:
		return a.ApplicantEmail, a.ApplicantEmail != ""
	case ChannelSMS, ChannelWhatsApp:
		return a.ApplicantPhone, a.ApplicantPhone != ""
	}
	// Internal chat never reaches applicants.
	return "", false
}
