package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tickevo.app/backend/core/db"
	"tickevo.app/backend/internal/model"
)

const ticketColumns = `id, title, description, creator_id, creator_name, stage, priority,
	current_turn, queue, version, created_at, last_update_date`

type ticketStore struct {
	q db.DBTX
}

func newTicketStore(q db.DBTX) TicketStore {
	return &ticketStore{q: q}
}

func (s *ticketStore) Create(ctx context.Context, t *model.Ticket) error {
	if t.Queue == nil {
		t.Queue = []int64{}
	}
	if t.Version == 0 {
		t.Version = 1
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO tickets (id, title, description, creator_id, creator_name, stage, priority,
			current_turn, queue, version, created_at, last_update_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+ticketColumns,
		t.ID, t.Title, t.Description, t.CreatorID, t.CreatorName, t.Stage, t.Priority,
		t.CurrentTurn, t.Queue, t.Version, t.CreatedAt, t.LastUpdateDate,
	)
	created, err := scanTicket(row)
	if err != nil {
		return translate(err)
	}
	*t = *created
	return nil
}

func (s *ticketStore) GetByID(ctx context.Context, id int64) (*model.Ticket, error) {
	t, err := scanTicket(s.q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (s *ticketStore) GetForUpdate(ctx context.Context, id int64) (*model.Ticket, error) {
	t, err := scanTicket(s.q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (s *ticketStore) List(ctx context.Context) ([]model.Ticket, error) {
	rows, err := s.q.Query(ctx, `SELECT `+ticketColumns+` FROM tickets`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (s *ticketStore) Update(ctx context.Context, t *model.Ticket) error {
	if t.Queue == nil {
		t.Queue = []int64{}
	}
	row := s.q.QueryRow(ctx, `
		UPDATE tickets
		SET stage = $2, priority = $3, current_turn = $4, queue = $5,
			last_update_date = $6, version = version + 1
		WHERE id = $1 AND version = $7
		RETURNING `+ticketColumns,
		t.ID, t.Stage, t.Priority, t.CurrentTurn, t.Queue, t.LastUpdateDate, t.Version,
	)
	updated, err := scanTicket(row)
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrNotFound) {
			// Either gone or a newer version exists.
			if _, getErr := s.GetByID(ctx, t.ID); getErr == nil {
				return ErrConflict
			}
		}
		return err
	}
	*t = *updated
	return nil
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.CreatorID, &t.CreatorName, &t.Stage, &t.Priority,
		&t.CurrentTurn, &t.Queue, &t.Version, &t.CreatedAt, &t.LastUpdateDate,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
