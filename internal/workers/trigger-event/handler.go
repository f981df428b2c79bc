// Package triggerevent is the Camunda job worker that fires onboarding
// messaging events from workflow instances.
package triggerevent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/engine/trigger"
	"onboarding-hub/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "trigger-messaging-event"

type Handler struct {
	config      *Config
	coordinator *trigger.Coordinator
	events      store.EventStore
	logger      logger.Logger
}

func NewHandler(config *Config, coordinator *trigger.Coordinator, events store.EventStore, log logger.Logger) *Handler {
	return &Handler{
		config:      config,
		coordinator: coordinator,
		events:      events,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		// Configuration errors never succeed on retry; everything else might.
		retries := int32(3)
		if hberrors.IsConfiguration(err) {
			retries = 0
		}
		h.failJob(client, job, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	eventID := input.EventID
	if eventID == "" {
		if input.EventCode == "" {
			return nil, fmt.Errorf("either eventId or eventCode is required")
		}
		event, err := h.events.GetByCode(ctx, input.EventCode)
		if err != nil {
			return nil, err
		}
		eventID = event.ID
	}

	logs, err := h.coordinator.Trigger(ctx, eventID, input.ApplicationID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.ID)
	}
	return &Output{
		EventID:      eventID,
		MessageIDs:   ids,
		MessageCount: len(ids),
		TriggeredAt:  time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, message string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":  job.Key,
		"message": message,
		"retries": retries,
	})

	_, err := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(message).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send fail job command", map[string]interface{}{
			"error": err,
		})
	}
}
