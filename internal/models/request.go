package models

import (
	"strings"
)

// body of POST /api/v1/sessions
type CreateSessionBody struct {
	Difficulty string `json:"difficulty"`
}

// implements the Validator interface
func (r *CreateSessionBody) Validate() error {
	r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))
	if r.Difficulty == "" {
		return nil
	}
	if !ValidDifficulties[Difficulty(r.Difficulty)] {
		return &ErrorResponse{
			Code:    "invalid_difficulty",
			Message: "Difficulty must be one of: " + strings.Join(ValidDifficultiesList(), ", "),
		}
	}
	return nil
}

// body of POST /api/v1/sessions/messages
type SendMessageBody struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

func (r *SendMessageBody) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return &ErrorResponse{
			Code:    "missing_content",
			Message: "Content field is required",
		}
	}

	r.MessageType = strings.ToLower(strings.TrimSpace(r.MessageType))
	if r.MessageType == "" {
		r.MessageType = string(MessageTypeResponse)
	}
	if !ValidUserMessageTypes[MessageType(r.MessageType)] {
		return &ErrorResponse{
			Code:    "invalid_message_type",
			Message: "Unsupported message type: " + r.MessageType,
		}
	}
	return nil
}
