package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"tickevo.app/backend/core/db"
	"tickevo.app/backend/internal/model"
)

const messageColumns = `id, ticket_id, author_id, author_name, body, created_at`

type messageStore struct {
	q db.DBTX
}

func newMessageStore(q db.DBTX) MessageStore {
	return &messageStore{q: q}
}

func (s *messageStore) Create(ctx context.Context, m *model.Message) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.TicketID, m.AuthorID, m.AuthorName, m.Body, m.CreatedAt,
	)
	return translate(err)
}

func (s *messageStore) ListByTicket(ctx context.Context, ticketID int64) ([]model.Message, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE ticket_id = $1
		ORDER BY created_at, id`, ticketID)
	if err != nil {
		return nil, translate(err)
	}
	return collectMessages(rows)
}

func (s *messageStore) ListRecent(ctx context.Context, ticketID int64, limit int) ([]model.Message, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+` FROM messages
			WHERE ticket_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at, id`, ticketID, limit)
	if err != nil {
		return nil, translate(err)
	}
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]model.Message, error) {
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Message, error) {
		var m model.Message
		err := row.Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.AuthorName, &m.Body, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, translate(err)
	}
	return msgs, nil
}
