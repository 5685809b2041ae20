package arangostore

import (
	"context"
	"slices"

	arango "tickevo.app/backend/common/arangodb"
	"tickevo.app/backend/internal/model"
)

type userStore struct {
	q arango.Querier
}

// Create claims the username first so a taken name fails with a unique
// constraint violation on the usernames primary key.
func (s *userStore) Create(ctx context.Context, user *model.User) error {
	doc := toUserDoc(user)
	err := exec(ctx, s.q, `INSERT { _key: @claim, user_key: @user } INTO usernames`, map[string]any{
		"claim": arango.MakeKey(user.Username),
		"user":  doc.Key,
	})
	if err != nil {
		return err
	}
	if err := exec(ctx, s.q, `INSERT @doc INTO users`, map[string]any{"doc": doc}); err != nil {
		return err
	}
	user.Badges = doc.Badges
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	doc, err := readOne[userDoc](ctx, s.q, `FOR u IN users FILTER u._key == @key RETURN u`, map[string]any{"key": key(id)})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	doc, err := readOne[userDoc](ctx, s.q, `
		FOR c IN usernames FILTER c._key == @claim
			FOR u IN users FILTER u._key == c.user_key AND u.username == @username
				RETURN u`,
		map[string]any{"claim": arango.MakeKey(username), "username": username})
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *userStore) ListIDs(ctx context.Context) ([]int64, error) {
	keys, err := readAll[string](ctx, s.q, `FOR u IN users RETURN u._key`, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(keys))
	for i, k := range keys {
		ids[i] = parseKey(k)
	}
	slices.Sort(ids)
	return ids, nil
}
