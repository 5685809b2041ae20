package arangostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/arangodb/go-driver/v2/arangodb"

	arango "tickevo.app/backend/common/arangodb"
	"tickevo.app/backend/internal/store"
)

// readAll runs an AQL query and decodes every result document into T.
func readAll[T any](ctx context.Context, q arango.Querier, query string, bindVars map[string]any) ([]T, error) {
	cursor, err := q.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close()

	var out []T
	for cursor.HasMore() {
		var doc T
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, fmt.Errorf("read document: %w", translate(err))
		}
		out = append(out, doc)
	}
	return out, nil
}

// readOne returns the first result or store.ErrNotFound.
func readOne[T any](ctx context.Context, q arango.Querier, query string, bindVars map[string]any) (T, error) {
	docs, err := readAll[T](ctx, q, query, bindVars)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(docs) == 0 {
		var zero T
		return zero, store.ErrNotFound
	}
	return docs[0], nil
}

func exec(ctx context.Context, q arango.Querier, query string, bindVars map[string]any) error {
	cursor, err := q.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return translate(err)
	}
	return cursor.Close()
}

func translate(err error) error {
	err = arango.Translate(err)
	switch {
	case errors.Is(err, arango.ErrConflict):
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	case errors.Is(err, arango.ErrDuplicate):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}
