package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskEscalationCheck = "escalation.check"

type EscalationCheckPayload struct {
	AccountID string `json:"accountId"`
}

func NewEscalationCheckTask(payload EscalationCheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEscalationCheck, data), nil
}

func ParseEscalationCheckPayload(task *asynq.Task) (EscalationCheckPayload, error) {
	var payload EscalationCheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EscalationCheckPayload{}, err
	}
	return payload, nil
}
