package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskHandoverSync = "handover.sync"

type HandoverSyncPayload struct {
	LeadID  string `json:"leadId"`
	ActorID string `json:"actorId,omitempty"`
}

func NewHandoverSyncTask(payload HandoverSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHandoverSync, data), nil
}

func ParseHandoverSyncPayload(task *asynq.Task) (HandoverSyncPayload, error) {
	var payload HandoverSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return HandoverSyncPayload{}, err
	}
	return payload, nil
}

// handoverTaskID keeps at most one queued sync per lead.
func handoverTaskID(leadID string) string {
	return "handover-sync:" + leadID
}
