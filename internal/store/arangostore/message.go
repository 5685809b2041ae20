package arangostore

import (
	"context"

	arango "tickevo.app/backend/common/arangodb"
	"tickevo.app/backend/internal/model"
)

type messageStore struct {
	q arango.Querier
}

func (s *messageStore) Create(ctx context.Context, m *model.Message) error {
	return exec(ctx, s.q, `INSERT @doc INTO messages`, map[string]any{"doc": toMessageDoc(m)})
}

func (s *messageStore) ListByTicket(ctx context.Context, ticketID int64) ([]model.Message, error) {
	docs, err := readAll[messageDoc](ctx, s.q, `
		FOR m IN messages
			FILTER m.ticket_id == @ticket
			SORT m.created_at, m._key
			RETURN m`,
		map[string]any{"ticket": key(ticketID)})
	if err != nil {
		return nil, err
	}
	return toMessages(docs), nil
}

func (s *messageStore) ListRecent(ctx context.Context, ticketID int64, limit int) ([]model.Message, error) {
	docs, err := readAll[messageDoc](ctx, s.q, `
		FOR m IN (
			FOR x IN messages
				FILTER x.ticket_id == @ticket
				SORT x.created_at DESC, x._key DESC
				LIMIT @limit
				RETURN x
		)
			SORT m.created_at, m._key
			RETURN m`,
		map[string]any{"ticket": key(ticketID), "limit": limit})
	if err != nil {
		return nil, err
	}
	return toMessages(docs), nil
}

func toMessages(docs []messageDoc) []model.Message {
	out := make([]model.Message, len(docs))
	for i, d := range docs {
		out[i] = d.toModel()
	}
	return out
}
