package store

import (
	"context"
	"errors"

	"tickevo.app/backend/internal/model"
)

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken
	ErrDuplicate = errors.New("duplicate")
	// ErrConflict is returned when a concurrent writer won; the caller may retry
	ErrConflict = errors.New("write conflict")
)

// UserStore defines the contract for user data access
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// ListIDs returns every user ID in ascending order.
	ListIDs(ctx context.Context) ([]int64, error)
}

// TicketStore defines the contract for ticket data access
type TicketStore interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	GetByID(ctx context.Context, id int64) (*model.Ticket, error)
	// GetForUpdate reads the ticket and locks it for the rest of the transaction.
	GetForUpdate(ctx context.Context, id int64) (*model.Ticket, error)
	List(ctx context.Context) ([]model.Ticket, error)
	// Update writes the ticket if its Version still matches the stored one and
	// bumps Version. A stale Version yields ErrConflict.
	Update(ctx context.Context, ticket *model.Ticket) error
}

// MessageStore defines the contract for chat message data access
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListByTicket returns the whole thread, oldest first.
	ListByTicket(ctx context.Context, ticketID int64) ([]model.Message, error)
	// ListRecent returns the newest limit messages, oldest first.
	ListRecent(ctx context.Context, ticketID int64, limit int) ([]model.Message, error)
}
