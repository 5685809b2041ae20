package service

import (
	"context"

	arango "tickevo.app/backend/common/arangodb"
	"tickevo.app/backend/core/db"
	"tickevo.app/backend/internal/store"
	"tickevo.app/backend/internal/store/arangostore"
)

// StoreProvider exposes the stores an operation works with, either bound to
// a transaction or to the plain connection.
type StoreProvider interface {
	Users() store.UserStore
	Tickets() store.TicketStore
	Messages() store.MessageStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by Postgres.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q db.DBTX) error {
		return fn(store.NewStores(q))
	})
}

type arangoTxRunner struct {
	client arango.Client
}

// NewArangoTxRunner builds a TxRunner on ArangoDB stream transactions.
func NewArangoTxRunner(client arango.Client) TxRunner {
	return &arangoTxRunner{client: client}
}

func (r *arangoTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return arangostore.WithTx(ctx, r.client, func(stores *arangostore.Stores) error {
		return fn(stores)
	})
}
