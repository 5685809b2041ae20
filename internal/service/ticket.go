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

type TicketService interface {
	Create(ctx context.Context, creatorID int64, title, description string, priority model.Priority) (*model.Ticket, error)
	List(ctx context.Context) ([]model.Ticket, error)
	// Get returns the ticket after applying the side effects of userID viewing it.
	Get(ctx context.Context, ticketID, userID int64) (*model.Ticket, error)
	UpdateStage(ctx context.Context, ticketID, userID int64, stage model.Stage) error
	JoinQueue(ctx context.Context, ticketID, userID int64) error
	Turn(ctx context.Context, ticketID int64) (model.TurnState, error)
	// EndTurn yields the turn to the head of the queue, or to nextUserID when
	// it is non-zero and that user is waiting.
	EndTurn(ctx context.Context, ticketID, userID, nextUserID int64) error
}

type ticketService struct {
	deps Deps
}

func NewTicketService(deps Deps) TicketService {
	return &ticketService{deps: deps.withDefaults()}
}

func (s *ticketService) Create(ctx context.Context, creatorID int64, title, description string, priority model.Priority) (*model.Ticket, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	creator, err := s.deps.Stores.Users().GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting creator: %w", err)
	}

	now := s.deps.Now()
	ticket := &model.Ticket{
		ID:             id.New(),
		Title:          title,
		Description:    description,
		CreatorID:      creator.ID,
		CreatorName:    creator.Username,
		Stage:          model.StageUnseen,
		Priority:       priority,
		Queue:          []int64{},
		Version:        1,
		CreatedAt:      now,
		LastUpdateDate: now,
	}

	if err := s.deps.Stores.Tickets().Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{TicketID: &ticket.ID, UserID: &creatorID})
	slog.InfoContext(ctx, "ticket created", "priority", ticket.Priority)
	s.deps.publish(ctx, []queue.Event{{Type: queue.EventTicketCreated, TicketID: ticket.ID, UserID: creatorID, At: now}})

	return ticket, nil
}

func (s *ticketService) List(ctx context.Context) ([]model.Ticket, error) {
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	tickets, err := s.deps.Stores.Tickets().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	domain.SortTickets(tickets)
	return tickets, nil
}

func (s *ticketService) Get(ctx context.Context, ticketID, userID int64) (*model.Ticket, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TicketID:  &ticketID,
		UserID:    &userID,
		Component: "tickevo.service.ticket",
	})
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	ticket, err := s.deps.Stores.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("getting ticket: %w", err)
	}

	viewed, err := s.mutate(ctx, "ticket.view", ticketID, func(_ context.Context, _ StoreProvider, t *model.Ticket, now time.Time) ([]queue.Event, error) {
		r := domain.View(t, userID, now, s.deps.Turn.IdleTimeout)
		return viewEvents(t, userID, r, now), nil
	})
	if err != nil {
		// Viewing must not fail because the queue bookkeeping did.
		slog.WarnContext(ctx, "ticket view side effects failed", "error", err)
		return ticket, nil
	}
	return viewed, nil
}

func (s *ticketService) UpdateStage(ctx context.Context, ticketID, userID int64, stage model.Stage) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{TicketID: &ticketID, UserID: &userID})
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	_, err := s.mutate(ctx, "ticket.update_stage", ticketID, func(_ context.Context, _ StoreProvider, t *model.Ticket, now time.Time) ([]queue.Event, error) {
		from := t.Stage
		changed, err := domain.AdvanceStage(t, stage, now)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot move from %q to %q", err, from, stage)
		}
		if !changed {
			return nil, nil
		}
		return []queue.Event{stageEvent(t, userID, now)}, nil
	})
	return err
}

func (s *ticketService) JoinQueue(ctx context.Context, ticketID, userID int64) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{TicketID: &ticketID, UserID: &userID})
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	_, err := s.mutate(ctx, "ticket.join_queue", ticketID, func(_ context.Context, _ StoreProvider, t *model.Ticket, now time.Time) ([]queue.Event, error) {
		if !domain.Join(t, userID, now) {
			return nil, nil
		}
		return []queue.Event{{Type: queue.EventQueueJoined, TicketID: t.ID, UserID: userID, Holder: holder(t), At: now}}, nil
	})
	return err
}

func (s *ticketService) Turn(ctx context.Context, ticketID int64) (model.TurnState, error) {
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	ticket, err := s.deps.Stores.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.TurnState{}, ErrTicketNotFound
		}
		return model.TurnState{}, fmt.Errorf("getting ticket: %w", err)
	}
	return ticket.TurnState(), nil
}

func (s *ticketService) EndTurn(ctx context.Context, ticketID, userID, nextUserID int64) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{TicketID: &ticketID, UserID: &userID})
	ctx, cancel := s.deps.storeContext(ctx)
	defer cancel()

	_, err := s.mutate(ctx, "ticket.end_turn", ticketID, func(_ context.Context, _ StoreProvider, t *model.Ticket, now time.Time) ([]queue.Event, error) {
		before := holder(t)
		var err error
		if nextUserID != 0 {
			err = domain.YieldTo(t, userID, nextUserID, now)
		} else {
			err = domain.Yield(t, userID, now)
		}
		if err != nil {
			return nil, err
		}
		if holder(t) == before {
			return nil, nil
		}
		return []queue.Event{{Type: queue.EventTurnRotated, TicketID: t.ID, UserID: userID, Holder: holder(t), At: now}}, nil
	})
	return err
}

// mutateFunc changes the locked ticket and reports what happened. ctx carries
// the operation span. No events means nothing changed and the write is skipped.
type mutateFunc func(ctx context.Context, stores StoreProvider, t *model.Ticket, now time.Time) ([]queue.Event, error)

// mutate is the read-modify-write cycle every turn operation goes through.
func (s *ticketService) mutate(ctx context.Context, op string, ticketID int64, fn mutateFunc) (*model.Ticket, error) {
	sc := logger.StartSpan(ctx, op)
	defer sc.End()
	ctx = sc.Context()

	var (
		result *model.Ticket
		events []queue.Event
	)
	err := s.deps.inTx(ctx, op, func(stores StoreProvider) error {
		t, err := stores.Tickets().GetForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		events, err = fn(ctx, stores, t, s.deps.Now())
		if err != nil {
			return err
		}
		if len(events) > 0 {
			if err := stores.Tickets().Update(ctx, t); err != nil {
				return err
			}
		}
		result = t
		return nil
	})
	if err != nil {
		sc.RecordError(err)
		return nil, err
	}

	s.deps.publish(ctx, events)
	return result, nil
}

func viewEvents(t *model.Ticket, userID int64, r domain.ViewResult, now time.Time) []queue.Event {
	var events []queue.Event
	if r.Joined {
		events = append(events, queue.Event{Type: queue.EventQueueJoined, TicketID: t.ID, UserID: userID, Holder: holder(t), At: now})
	}
	if r.Rotated || r.Granted {
		events = append(events, queue.Event{Type: queue.EventTurnRotated, TicketID: t.ID, UserID: userID, Holder: holder(t), At: now})
	}
	if r.Seen {
		events = append(events, queue.Event{Type: queue.EventTicketViewed, TicketID: t.ID, UserID: userID, Holder: holder(t), At: now})
	}
	return events
}

func stageEvent(t *model.Ticket, userID int64, now time.Time) queue.Event {
	return queue.Event{Type: queue.EventStageChanged, TicketID: t.ID, UserID: userID, Holder: holder(t), At: now}
}

func holder(t *model.Ticket) int64 {
	if t.CurrentTurn == nil {
		return 0
	}
	return *t.CurrentTurn
}
