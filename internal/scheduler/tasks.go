// Package scheduler runs background scoring work through asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskScoringBatch = "scoring.batch"

// ScoringBatchPayload asks the worker to score every unscored lead of
// one tenant.
type ScoringBatchPayload struct {
	TenantID string `json:"tenantId"`
}

func NewScoringBatchTask(payload ScoringBatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScoringBatch, data), nil
}

func ParseScoringBatchPayload(task *asynq.Task) (ScoringBatchPayload, error) {
	var payload ScoringBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ScoringBatchPayload{}, err
	}
	return payload, nil
}
