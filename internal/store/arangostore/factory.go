// Package arangostore implements the store contracts on ArangoDB documents.
package arangostore

import (
	"context"

	arango "tickevo.app/backend/common/arangodb"
	"tickevo.app/backend/internal/store"
)

type Stores struct {
	q arango.Querier
}

func NewStores(q arango.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Users() store.UserStore {
	return &userStore{q: s.q}
}

func (s *Stores) Tickets() store.TicketStore {
	return &ticketStore{q: s.q}
}

func (s *Stores) Messages() store.MessageStore {
	return &messageStore{q: s.q}
}

// WithTx runs fn against stores bound to one stream transaction. Conflicts
// raised while beginning or committing surface as store.ErrConflict.
func WithTx(ctx context.Context, client arango.Client, fn func(stores *Stores) error) error {
	return translate(client.WithTx(ctx, func(q arango.Querier) error {
		return fn(NewStores(q))
	}))
}
