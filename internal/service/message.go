package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tickevo.app/backend/common/id"
	"tickevo.app/backend/common/logger"
	"tickevo.app/backend/internal/domain"
	"tickevo.app/backend/internal/model"
	"tickevo.app/backend/internal/queue"
	"tickevo.app/backend/internal/store"
)

// LobbyHistory is how many lobby messages ListLobby returns.
const LobbyHistory = 20

type MessageService interface {
	// Post appends to the ticket thread and consumes the poster's turn.
	Post(ctx context.Context, ticketID, userID int64, body string) (*model.Message, error)
	List(ctx context.Context, ticketID int64) ([]model.Message, error)
	PostLobby(ctx context.Context, userID int64, body string) (*model.Message, error)
	ListLobby(ctx context.Context) ([]model.Message, error)
}

type messageService struct {
	deps    Deps
	tickets *ticketService
}

func NewMessageService(deps Deps) MessageService {
	deps = deps.withDefaults()
	return &messageService{
		deps:    deps,
		tickets: &ticketService{deps: deps},
	}
}

func (s *messageService) Post(ctx context.Context, ticketID, userID int64, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TicketID:  &ticketID,
		UserID:    &userID,
		Component: "tickevo.service.turn",
	})
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	var msg *model.Message
	_, err := s.tickets.mutate(ctx, "ticket.post_message", ticketID, func(ctx context.Context, stores StoreProvider, t *model.Ticket, now time.Time) ([]queue.Event, error) {
		if err := domain.CheckPost(t, userID); err != nil {
			return nil, err
		}

		author, err := stores.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("getting author: %w", err)
		}

		at := domain.MessageTime(t, now)
		msg = &model.Message{
			ID:         id.New(),
			TicketID:   t.ID,
			AuthorID:   author.ID,
			AuthorName: author.Username,
			Body:       body,
			CreatedAt:  at,
		}
		if err := stores.Messages().Create(ctx, msg); err != nil {
			return nil, fmt.Errorf("creating message: %w", err)
		}

		var roster []int64
		if domain.NeedsRoster(t, userID) {
			if roster, err = stores.Users().ListIDs(ctx); err != nil {
				return nil, fmt.Errorf("listing users: %w", err)
			}
		}

		stageBefore := t.Stage
		domain.AfterPost(t, userID, roster, at)

		events := []queue.Event{
			{Type: queue.EventMessagePosted, TicketID: t.ID, UserID: userID, Holder: holder(t), At: at},
		}
		if t.Stage != stageBefore {
			events = append(events, stageEvent(t, userID, at))
		}
		return events, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotYourTurn) || errors.Is(err, domain.ErrCreatorMustWait) {
			slog.InfoContext(ctx, "post rejected", "reason", err.Error())
		}
		return nil, err
	}

	slog.InfoContext(ctx, "message posted", "message_id", msg.ID)
	return msg, nil
}

func (s *messageService) List(ctx context.Context, ticketID int64) ([]model.Message, error) {
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	if _, err := s.deps.Stores.Tickets().GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("getting ticket: %w", err)
	}

	msgs, err := s.deps.Stores.Messages().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

func (s *messageService) PostLobby(ctx context.Context, userID int64, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	author, err := s.deps.Stores.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting author: %w", err)
	}

	msg := &model.Message{
		ID:         id.New(),
		TicketID:   model.LobbyTicketID,
		AuthorID:   author.ID,
		AuthorName: author.Username,
		Body:       body,
		CreatedAt:  s.deps.Now(),
	}
	if err := s.deps.Stores.Messages().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	return msg, nil
}

func (s *messageService) ListLobby(ctx context.Context) ([]model.Message, error) {
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	msgs, err := s.deps.Stores.Messages().ListRecent(ctx, model.LobbyTicketID, LobbyHistory)
	if err != nil {
		return nil, fmt.Errorf("listing lobby messages: %w", err)
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}
