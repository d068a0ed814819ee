package delivery

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSendText = "delivery.text.send"

type SendTextPayload struct {
	CustomerNumber string `json:"customerNumber"`
	Text           string `json:"text"`
	PhoneNumberID  string `json:"phoneNumberId"`
	AccessToken    string `json:"accessToken"`
}

func NewSendTextTask(payload SendTextPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendText, data), nil
}

func ParseSendTextPayload(task *asynq.Task) (SendTextPayload, error) {
	var payload SendTextPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SendTextPayload{}, err
	}
	return payload, nil
}
