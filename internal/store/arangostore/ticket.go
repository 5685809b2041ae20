package arangostore

import (
	"context"
	"errors"

	arango "tickevo.app/backend/common/arangodb"
	"tickevo.app/backend/internal/model"
	"tickevo.app/backend/internal/store"
)

type ticketStore struct {
	q arango.Querier
}

func (s *ticketStore) Create(ctx context.Context, t *model.Ticket) error {
	if t.Queue == nil {
		t.Queue = []int64{}
	}
	if t.Version == 0 {
		t.Version = 1
	}
	return exec(ctx, s.q, `INSERT @doc INTO tickets`, map[string]any{"doc": toTicketDoc(t)})
}

func (s *ticketStore) GetByID(ctx context.Context, id int64) (*model.Ticket, error) {
	doc, err := readOne[ticketDoc](ctx, s.q, `FOR t IN tickets FILTER t._key == @key RETURN t`, map[string]any{"key": key(id)})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// GetForUpdate is a plain read; Update's version check and the transaction's
// write-write conflict detection stand in for a row lock.
func (s *ticketStore) GetForUpdate(ctx context.Context, id int64) (*model.Ticket, error) {
	return s.GetByID(ctx, id)
}

func (s *ticketStore) List(ctx context.Context) ([]model.Ticket, error) {
	docs, err := readAll[ticketDoc](ctx, s.q, `FOR t IN tickets RETURN t`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.Ticket, len(docs))
	for i, d := range docs {
		out[i] = *d.toModel()
	}
	return out, nil
}

func (s *ticketStore) Update(ctx context.Context, t *model.Ticket) error {
	doc := toTicketDoc(t)
	updated, err := readOne[ticketDoc](ctx, s.q, `
		FOR t IN tickets
			FILTER t._key == @key AND t.version == @version
			UPDATE t WITH {
				stage: @stage,
				priority: @priority,
				current_turn: @current_turn,
				queue: @queue,
				last_update_date: @last_update_date,
				version: t.version + 1
			} IN tickets
			RETURN NEW`,
		map[string]any{
			"key":              doc.Key,
			"version":          doc.Version,
			"stage":            doc.Stage,
			"priority":         doc.Priority,
			"current_turn":     doc.CurrentTurn,
			"queue":            doc.Queue,
			"last_update_date": doc.LastUpdateDate,
		})
	if errors.Is(err, store.ErrNotFound) {
		if _, getErr := s.GetByID(ctx, t.ID); getErr == nil {
			return store.ErrConflict
		}
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	*t = *updated.toModel()
	return nil
}
