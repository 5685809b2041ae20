package arangodb

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"
	"github.com/arangodb/go-driver/v2/connection"
)

// Collections used by the document store. usernames holds one claim document
// per username so uniqueness is enforced by the primary key.
const (
	CollectionUsers     = "users"
	CollectionUsernames = "usernames"
	CollectionTickets   = "tickets"
	CollectionMessages  = "messages"
)

var allCollections = []string{CollectionUsers, CollectionUsernames, CollectionTickets, CollectionMessages}

// ArangoDB error numbers mapped by the store layer.
const (
	errNumConflict         = 1200
	errNumUniqueConstraint = 1210
)

var (
	ErrConflict  = errors.New("arangodb write conflict")
	ErrDuplicate = errors.New("arangodb unique constraint violated")
)

// Querier runs AQL. Both the database handle and a stream transaction satisfy it.
type Querier interface {
	Query(ctx context.Context, query string, opts *arangodb.QueryOptions) (arangodb.Cursor, error)
}

type Client interface {
	EnsureDatabase(ctx context.Context) error
	EnsureCollections(ctx context.Context) error

	// Queries returns the database for reads outside a transaction.
	Queries() Querier
	// WithTx runs fn inside a stream transaction that writes every collection.
	WithTx(ctx context.Context, fn func(q Querier) error) error

	Close() error
}

type Config struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("arangodb username is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

type client struct {
	conn         connection.Connection
	arangoClient arangodb.Client
	db           arangodb.Database
	cfg          Config
}

func New(ctx context.Context, cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))

	auth := connection.NewBasicAuth(cfg.Username, cfg.Password)
	if err := conn.SetAuthentication(auth); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	return &client{
		conn:         conn,
		arangoClient: arangodb.NewClient(conn),
		cfg:          cfg,
	}, nil
}

func (c *client) Close() error {
	return nil
}

func (c *client) EnsureDatabase(ctx context.Context) error {
	start := time.Now()

	exists, err := c.arangoClient.DatabaseExists(ctx, c.cfg.Database)
	if err != nil {
		return fmt.Errorf("check database exists: %w", err)
	}

	if !exists {
		_, err = c.arangoClient.CreateDatabase(ctx, c.cfg.Database, nil)
		if err != nil {
			return fmt.Errorf("create database: %w", err)
		}
		slog.InfoContext(ctx, "arangodb database created",
			"database", c.cfg.Database,
			"duration_ms", time.Since(start).Milliseconds())
	}

	db, err := c.arangoClient.GetDatabase(ctx, c.cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	c.db = db

	return nil
}

func (c *client) EnsureCollections(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized, call EnsureDatabase first")
	}

	for _, name := range allCollections {
		exists, err := c.db.CollectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check collection %s exists: %w", name, err)
		}
		if exists {
			continue
		}

		colType := arangodb.CollectionTypeDocument
		if _, err := c.db.CreateCollectionV2(ctx, name, &arangodb.CreateCollectionPropertiesV2{Type: &colType}); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
		slog.InfoContext(ctx, "arangodb collection created", "collection", name)
	}

	return nil
}

func (c *client) Queries() Querier {
	return c.db
}

func (c *client) WithTx(ctx context.Context, fn func(q Querier) error) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}

	tx, err := c.db.BeginTransaction(ctx, arangodb.TransactionCollections{Write: allCollections}, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", Translate(err))
	}

	if err := fn(tx); err != nil {
		if abortErr := tx.Abort(ctx, nil); abortErr != nil {
			slog.WarnContext(ctx, "arangodb transaction abort failed", "error", abortErr)
		}
		return err
	}

	if err := tx.Commit(ctx, nil); err != nil {
		return fmt.Errorf("committing transaction: %w", Translate(err))
	}
	return nil
}

// Translate wraps driver errors the store layer branches on.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case shared.IsArangoErrorWithErrorNum(err, errNumConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case shared.IsArangoErrorWithErrorNum(err, errNumUniqueConstraint):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// MakeKey derives a document key that is safe for any input string.
func MakeKey(s string) string {
	hash := md5.Sum([]byte(s))
	return hex.EncodeToString(hash[:])[:16]
}
