package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"tickevo.app/backend/core/db"
	"tickevo.app/backend/internal/model"
)

const userColumns = `id, username, password_hash, experience, ticket_tokens, badges, created_at`

type userStore struct {
	q db.DBTX
}

func newUserStore(q db.DBTX) UserStore {
	return &userStore{q: q}
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	if user.Badges == nil {
		user.Badges = []string{}
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash, experience, ticket_tokens, badges, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		user.ID, user.Username, user.PasswordHash, user.Experience, user.TicketTokens, user.Badges, user.CreatedAt,
	)
	created, err := scanUser(row)
	if err != nil {
		return translate(err)
	}
	*user = *created
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *userStore) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.q.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, translate(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Experience, &u.TicketTokens, &u.Badges, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
