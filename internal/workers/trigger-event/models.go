package triggerevent

type Input struct {
	EventID       string `json:"eventId,omitempty"`
	EventCode     string `json:"eventCode,omitempty"`
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	EventID      string   `json:"eventId"`
	MessageIDs   []string `json:"messageIds"`
	MessageCount int      `json:"messageCount"`
	TriggeredAt  string   `json:"triggeredAt"` // ISO 8601
}
