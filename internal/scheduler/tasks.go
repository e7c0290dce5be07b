package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadImagesCleanup = "leads.images.cleanup"

type LeadImagesCleanupPayload struct {
	LeadID    string   `json:"leadId"`
	ImageURLs []string `json:"imageUrls"`
}

func NewLeadImagesCleanupTask(payload LeadImagesCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadImagesCleanup, data), nil
}

func ParseLeadImagesCleanupPayload(task *asynq.Task) (LeadImagesCleanupPayload, error) {
	var payload LeadImagesCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadImagesCleanupPayload{}, err
	}
	return payload, nil
}
