package model

import "time"

// LobbyTicketID addresses the ticket-less lobby chat.
const LobbyTicketID int64 = 0

type Message struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
