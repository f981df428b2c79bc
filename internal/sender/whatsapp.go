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

// WhatsAppSender posts text messages to the WhatsApp Business API.
type WhatsAppSender struct {
	client      *hubhttp.Client
	baseURL     string
	phoneID     string
	accessToken string
}

func NewWhatsAppSender(client *hubhttp.Client, baseURL, phoneID, accessToken string) *WhatsAppSender {
	return &WhatsAppSender{
		client:      client,
		baseURL:     baseURL,
		phoneID:     phoneID,
		accessToken: accessToken,
	}
}

type whatsAppMessage struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	Body string `json:"body"`
}

type whatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (s *WhatsAppSender) Send(ctx context.Context, destination string, content models.Content) (Receipt, error) {
	payload, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               destination,
		Type:             "text",
		Text:             whatsAppTextBody{Body: content.Body},
	})
	if err != nil {
		return Receipt{}, err
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.DoWithContext(ctx, req)
	if err != nil {
		return Receipt{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{}, fmt.Errorf("whatsapp api returned %s", resp.Status)
	}

	var parsed whatsAppResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil && len(parsed.Messages) > 0 {
		return Receipt{ProviderMessageID: parsed.Messages[0].ID}, nil
	}
	return Receipt{}, nil
}
