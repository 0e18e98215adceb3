package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskWelcomeEmail = "email:welcome"

type WelcomeEmailPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWelcomeEmail, data), nil
}

func ParseWelcomeEmailPayload(task *asynq.Task) (WelcomeEmailPayload, error) {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WelcomeEmailPayload{}, err
	}
	return payload, nil
}

const TaskVerificationEmail = "email:verification"

type VerificationEmailPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

func NewVerificationEmailTask(payload VerificationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerificationEmail, data), nil
}

func ParseVerificationEmailPayload(task *asynq.Task) (VerificationEmailPayload, error) {
	var payload VerificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return VerificationEmailPayload{}, err
	}
	return payload, nil
}
