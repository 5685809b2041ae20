package arangostore

import (
	"strconv"
	"time"

	"tickevo.app/backend/internal/model"
)

// Timestamps are stored in UTC with a fixed-width layout so AQL can sort them
// as strings. IDs are stored as decimal strings since AQL numbers are doubles.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseKey(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

type userDoc struct {
	Key          string   `json:"_key"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"password_hash"`
	Experience   int64    `json:"experience"`
	TicketTokens int64    `json:"ticket_tokens"`
	Badges       []string `json:"badges"`
	CreatedAt    string   `json:"created_at"`
}

func toUserDoc(u *model.User) userDoc {
	badges := u.Badges
	if badges == nil {
		badges = []string{}
	}
	return userDoc{
		Key:          key(u.ID),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Experience:   u.Experience,
		TicketTokens: u.TicketTokens,
		Badges:       badges,
		CreatedAt:    formatTime(u.CreatedAt),
	}
}

func (d userDoc) toModel() *model.User {
	return &model.User{
		ID:           parseKey(d.Key),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Experience:   d.Experience,
		TicketTokens: d.TicketTokens,
		Badges:       d.Badges,
		CreatedAt:    parseTime(d.CreatedAt),
	}
}

type ticketDoc struct {
	Key            string   `json:"_key"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	CreatorID      string   `json:"creator_id"`
	CreatorName    string   `json:"creator_name"`
	Stage          string   `json:"stage"`
	Priority       string   `json:"priority"`
	CurrentTurn    *string  `json:"current_turn"`
	Queue          []string `json:"queue"`
	Version        int64    `json:"version"`
	CreatedAt      string   `json:"created_at"`
	LastUpdateDate string   `json:"last_update_date"`
}

func toTicketDoc(t *model.Ticket) ticketDoc {
	d := ticketDoc{
		Key:            key(t.ID),
		Title:          t.Title,
		Description:    t.Description,
		CreatorID:      key(t.CreatorID),
		CreatorName:    t.CreatorName,
		Stage:          string(t.Stage),
		Priority:       string(t.Priority),
		Queue:          make([]string, len(t.Queue)),
		Version:        t.Version,
		CreatedAt:      formatTime(t.CreatedAt),
		LastUpdateDate: formatTime(t.LastUpdateDate),
	}
	for i, u := range t.Queue {
		d.Queue[i] = key(u)
	}
	if t.CurrentTurn != nil {
		holder := key(*t.CurrentTurn)
		d.CurrentTurn = &holder
	}
	return d
}

func (d ticketDoc) toModel() *model.Ticket {
	t := &model.Ticket{
		ID:             parseKey(d.Key),
		Title:          d.Title,
		Description:    d.Description,
		CreatorID:      parseKey(d.CreatorID),
		CreatorName:    d.CreatorName,
		Stage:          model.Stage(d.Stage),
		Priority:       model.Priority(d.Priority),
		Queue:          make([]int64, len(d.Queue)),
		Version:        d.Version,
		CreatedAt:      parseTime(d.CreatedAt),
		LastUpdateDate: parseTime(d.LastUpdateDate),
	}
	for i, u := range d.Queue {
		t.Queue[i] = parseKey(u)
	}
	if d.CurrentTurn != nil {
		holder := parseKey(*d.CurrentTurn)
		t.CurrentTurn = &holder
	}
	return t
}

type messageDoc struct {
	Key        string `json:"_key"`
	TicketID   string `json:"ticket_id"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

func toMessageDoc(m *model.Message) messageDoc {
	return messageDoc{
		Key:        key(m.ID),
		TicketID:   key(m.TicketID),
		AuthorID:   key(m.AuthorID),
		AuthorName: m.AuthorName,
		Body:       m.Body,
		CreatedAt:  formatTime(m.CreatedAt),
	}
}

func (d messageDoc) toModel() model.Message {
	return model.Message{
		ID:         parseKey(d.Key),
		TicketID:   parseKey(d.TicketID),
		AuthorID:   parseKey(d.AuthorID),
		AuthorName: d.AuthorName,
		Body:       d.Body,
		CreatedAt:  parseTime(d.CreatedAt),
	}
}
