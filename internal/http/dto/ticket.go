package dto

import (
	"time"

	"tickevo.app/backend/common/id"
	"tickevo.app/backend/internal/model"
)

type CreateTicketRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=10000"`
	Priority    string `json:"priority"`
}

type CreateTicketResponse struct {
	Success  bool  `json:"success"`
	TicketID int64 `json:"ticketId,string"`
}

type UpdateStageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// EndTurnRequest is optional; an empty body yields to the head of the queue.
type EndTurnRequest struct {
	NextUserID string `json:"nextUserId"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type TicketResponse struct {
	ID             int64     `json:"id,string"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatorID      int64     `json:"creatorId,string"`
	CreatorName    string    `json:"creatorName"`
	Stage          string    `json:"stage"`
	Priority       string    `json:"priority"`
	CurrentTurn    *string   `json:"currentTurn"`
	Queue          []string  `json:"queue"`
	CreatedAt      time.Time `json:"createdAt"`
	LastUpdateDate time.Time `json:"lastUpdateDate"`
}

func ToTicketResponse(t *model.Ticket) TicketResponse {
	turn := ToTurnResponse(t.TurnState())
	return TicketResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		CreatorID:      t.CreatorID,
		CreatorName:    t.CreatorName,
		Stage:          string(t.Stage),
		Priority:       string(t.Priority),
		CurrentTurn:    turn.CurrentTurn,
		Queue:          turn.Queue,
		CreatedAt:      t.CreatedAt,
		LastUpdateDate: t.LastUpdateDate,
	}
}

func ToTicketResponses(tickets []model.Ticket) []TicketResponse {
	out := make([]TicketResponse, len(tickets))
	for i := range tickets {
		out[i] = ToTicketResponse(&tickets[i])
	}
	return out
}

type TurnResponse struct {
	CurrentTurn *string  `json:"currentTurn"`
	Queue       []string `json:"queue"`
}

func ToTurnResponse(s model.TurnState) TurnResponse {
	resp := TurnResponse{Queue: make([]string, len(s.Queue))}
	for i, u := range s.Queue {
		resp.Queue[i] = id.Format(u)
	}
	if s.CurrentTurn != nil {
		holder := id.Format(*s.CurrentTurn)
		resp.CurrentTurn = &holder
	}
	return resp
}
