// Package logindex mirrors message log entries into Elasticsearch so the
// admin UI can run full-text and aggregation queries without touching
// Postgres. Indexing is best-effort and never fails the dispatch path.
package logindex

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"onboarding-hub/internal/common/database"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"
)

const defaultIndex = "message-logs"

// Document is the indexed projection of a MessageLog.
type Document struct {
	MessageID         string     `json:"messageId"`
	ApplicationID     string     `json:"applicationId"`
	EventID           string     `json:"eventId"`
	ChannelID         string     `json:"channelId"`
	ChannelType       string     `json:"channelType"`
	RecipientType     string     `json:"recipientType"`
	RecipientID       string     `json:"recipientId"`
	RecipientName     string     `json:"recipientName"`
	Subject           string     `json:"subject"`
	Body              string     `json:"body"`
	Status            string     `json:"status"`
	FailureReason     string     `json:"failureReason,omitempty"`
	EscalatedFrom     string     `json:"escalatedFrom,omitempty"`
	EscalationAttempt int        `json:"escalationAttempt"`
	SentAt            time.Time  `json:"sentAt"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
	RepliedAt         *time.Time `json:"repliedAt,omitempty"`
	IndexedAt         time.Time  `json:"indexedAt"`
}

// Indexer writes log documents. A nil Indexer is a no-op.
type Indexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = defaultIndex
	}
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "log-indexer"}),
	}
}

// Index upserts the document keyed by the log ID, so status updates
// overwrite the dispatch-time document.
func (i *Indexer) Index(ctx context.Context, entry models.MessageLog) {
	if i == nil || i.es == nil {
		return
	}

	doc := Document{
		MessageID:         entry.ID,
		ApplicationID:     entry.ApplicationID,
		EventID:           entry.EventID,
		ChannelID:         entry.ChannelID,
		ChannelType:       string(entry.ChannelType),
		RecipientType:     string(entry.RecipientType),
		RecipientID:       entry.RecipientID,
		RecipientName:     entry.RecipientName,
		Subject:           entry.Subject,
		Body:              entry.Body,
		Status:            string(entry.Status),
		FailureReason:     entry.FailureReason,
		EscalatedFrom:     entry.EscalatedFrom,
		EscalationAttempt: entry.EscalationAttempt,
		SentAt:            entry.SentAt,
		DeliveredAt:       entry.DeliveredAt,
		RepliedAt:         entry.RepliedAt,
		IndexedAt:         time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		i.logger.Error("log document marshal failed", map[string]interface{}{"messageId": entry.ID, "error": err})
		return
	}

	res, err := i.es.Client.Index(
		i.index,
		bytes.NewReader(body),
		i.es.Client.Index.WithContext(ctx),
		i.es.Client.Index.WithDocumentID(entry.ID),
	)
	if err != nil {
		i.logger.Error("log index request failed", map[string]interface{}{"messageId": entry.ID, "error": err})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Error("log index rejected", map[string]interface{}{
			"messageId": entry.ID,
			"status":    res.Status(),
		})
	}
}
