package model

import (
	"slices"
	"time"
)

type Stage string

const (
	StageUnseen        Stage = "Unseen"
	StagePendingReview Stage = "Pending Review"
	StageUnderReview   Stage = "Under Review"
)

// Rank orders stages along the lifecycle. Unknown stages rank -1.
func (s Stage) Rank() int {
	switch s {
	case StageUnseen:
		return 0
	case StagePendingReview:
		return 1
	case StageUnderReview:
		return 2
	default:
		return -1
	}
}

func (s Stage) Valid() bool {
	return s.Rank() >= 0
}

type Priority string

const (
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityHigh
}

// Weight is higher for more urgent priorities.
func (p Priority) Weight() int {
	if p == PriorityHigh {
		return 1
	}
	return 0
}

type Ticket struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatorID      int64     `json:"creator_id"`
	CreatorName    string    `json:"creator_name"`
	Stage          Stage     `json:"stage"`
	Priority       Priority  `json:"priority"`
	CurrentTurn    *int64    `json:"current_turn,omitempty"`
	Queue          []int64   `json:"queue"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	LastUpdateDate time.Time `json:"last_update_date"`
}

func (t *Ticket) IsCreator(userID int64) bool {
	return t.CreatorID == userID
}

func (t *Ticket) HasTurn(userID int64) bool {
	return t.CurrentTurn != nil && *t.CurrentTurn == userID
}

func (t *Ticket) InQueue(userID int64) bool {
	return slices.Contains(t.Queue, userID)
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (t *Ticket) Clone() *Ticket {
	cp := *t
	cp.Queue = slices.Clone(t.Queue)
	if t.CurrentTurn != nil {
		turn := *t.CurrentTurn
		cp.CurrentTurn = &turn
	}
	return &cp
}

// TurnState is the posting gate of a ticket.
type TurnState struct {
	CurrentTurn *int64
	Queue       []int64
}

func (t *Ticket) TurnState() TurnState {
	c := t.Clone()
	return TurnState{CurrentTurn: c.CurrentTurn, Queue: c.Queue}
}
