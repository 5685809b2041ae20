package dto

import (
	"time"

	"tickevo.app/backend/internal/model"
)

type PostMessageRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

type MessageResponse struct {
	ID        int64     `json:"id,string"`
	TicketID  int64     `json:"ticketId,string,omitempty"`
	UserID    int64     `json:"userId,string"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func ToMessageResponses(msgs []model.Message) []MessageResponse {
	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = MessageResponse{
			ID:        m.ID,
			TicketID:  m.TicketID,
			UserID:    m.AuthorID,
			Username:  m.AuthorName,
			Message:   m.Body,
			Timestamp: m.CreatedAt,
		}
	}
	return out
}
