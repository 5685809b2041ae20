package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Experience   int64     `json:"experience"`
	TicketTokens int64     `json:"ticket_tokens"`
	Badges       []string  `json:"badges"`
	CreatedAt    time.Time `json:"created_at"`
}
