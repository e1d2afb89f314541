package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskReconcileSweep recomputes derived facts for every client seen in
// the recent log window.
const TaskReconcileSweep = "reconcile.sweep"

// TaskReconcileClient recomputes derived facts for a single client.
const TaskReconcileClient = "reconcile.client"

type ReconcileClientPayload struct {
	ClientID int64 `json:"clientId"`
}

func NewReconcileSweepTask() *asynq.Task {
	return asynq.NewTask(TaskReconcileSweep, nil)
}

func NewReconcileClientTask(payload ReconcileClientPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileClient, data), nil
}

func ParseReconcileClientPayload(task *asynq.Task) (ReconcileClientPayload, error) {
	var payload ReconcileClientPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReconcileClientPayload{}, err
	}
	return payload, nil
}
