package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	hubhttp "onboarding-hub/internal/common/http"
	"onboarding-hub/internal/models"
)

// TeamsSender posts MessageCards to an incoming-webhook URL. The destination
// address may override the default webhook per channel config.
type TeamsSender struct {
	client     *hubhttp.Client
	webhookURL string
}

func NewTeamsSender(client *hubhttp.Client, webhookURL string) *TeamsSender {
	return &TeamsSender{client: client, webhookURL: webhookURL}
}

type teamsCard struct {
	Type    string `json:"@type"`
	Context string `json:"@context"`
	Title   string `json:"title,omitempty"`
	Text    string `json:"text"`
}

func (s *TeamsSender) Send(ctx context.Context, destination string, content models.Content) (Receipt, error) {
	url := s.webhookURL
	if destination != "" && (len(destination) > 8 && destination[:8] == "https://") {
		url = destination
	}

	payload, err := json.Marshal(teamsCard{
		Type:    "MessageCard",
		Context: "http://schema.org/extensions",
		Title:   content.Subject,
		Text:    content.Body,
	})
	if err != nil {
		return Receipt{}, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.DoWithContext(ctx, req)
	if err != nil {
		return Receipt{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{}, fmt.Errorf("teams webhook returned %s", resp.Status)
	}
	return Receipt{}, nil
}
