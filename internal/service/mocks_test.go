package service_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"tickevo.app/backend/internal/model"
	"tickevo.app/backend/internal/queue"
	"tickevo.app/backend/internal/service"
	"tickevo.app/backend/internal/store"
)

// memDB is an in-memory store whose transactions are serialized and rolled
// back on error, like a row lock on the ticket would behave.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users    map[int64]model.User
	tickets  map[int64]model.Ticket
	messages []model.Message

	// updateFn, when set, runs before every ticket update and may fail it.
	updateFn    func(t *model.Ticket) error
	updateCalls int
	txCalls     int

	// messageCtx is the context the last message was written with.
	messageCtx context.Context
}

func newMemDB() *memDB {
	return &memDB{
		users:   map[int64]model.User{},
		tickets: map[int64]model.Ticket{},
	}
}

func (db *memDB) Users() store.UserStore       { return memUsers{db} }
func (db *memDB) Tickets() store.TicketStore   { return memTickets{db} }
func (db *memDB) Messages() store.MessageStore { return memMessages{db} }

func (db *memDB) WithTx(ctx context.Context, fn func(stores service.StoreProvider) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	db.txCalls++
	users := cloneMap(db.users)
	tickets := cloneMap(db.tickets)
	messages := slices.Clone(db.messages)
	db.mu.Unlock()

	if err := fn(db); err != nil {
		db.mu.Lock()
		db.users, db.tickets, db.messages = users, tickets, messages
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *memDB) addUser(id int64, name string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[id] = model.User{ID: id, Username: name, Badges: []string{}}
}

func (db *memDB) putTicket(t model.Ticket) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if t.Queue == nil {
		t.Queue = []int64{}
	}
	if t.Version == 0 {
		t.Version = 1
	}
	db.tickets[t.ID] = *t.Clone()
}

func (db *memDB) snapshot(id int64) *model.Ticket {
	db.mu.Lock()
	defer db.mu.Unlock()
	t := db.tickets[id]
	return t.Clone()
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, u *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Username == u.Username {
			return store.ErrDuplicate
		}
	}
	s.db.users[u.ID] = *u
	return nil
}

func (s memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s memUsers) ListIDs(_ context.Context) ([]int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ids := make([]int64, 0, len(s.db.users))
	for id := range s.db.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

type memTickets struct{ db *memDB }

func (s memTickets) Create(_ context.Context, t *model.Ticket) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tickets[t.ID] = *t.Clone()
	return nil
}

func (s memTickets) GetByID(_ context.Context, id int64) (*model.Ticket, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tickets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t.Clone(), nil
}

func (s memTickets) GetForUpdate(ctx context.Context, id int64) (*model.Ticket, error) {
	return s.GetByID(ctx, id)
}

func (s memTickets) List(_ context.Context) ([]model.Ticket, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.Ticket
	for _, t := range s.db.tickets {
		out = append(out, *t.Clone())
	}
	return out, nil
}

func (s memTickets) Update(_ context.Context, t *model.Ticket) error {
	s.db.mu.Lock()
	s.db.updateCalls++
	hook := s.db.updateFn
	s.db.mu.Unlock()

	if hook != nil {
		if err := hook(t); err != nil {
			return err
		}
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.tickets[t.ID]
	if !ok {
		return store.ErrNotFound
	}
	if stored.Version != t.Version {
		return store.ErrConflict
	}
	t.Version++
	s.db.tickets[t.ID] = *t.Clone()
	return nil
}

type memMessages struct{ db *memDB }

func (s memMessages) Create(ctx context.Context, m *model.Message) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.messageCtx = ctx
	s.db.messages = append(s.db.messages, *m)
	return nil
}

func (s memMessages) ListByTicket(_ context.Context, ticketID int64) ([]model.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.Message
	for _, m := range s.db.messages {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Message) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s memMessages) ListRecent(ctx context.Context, ticketID int64, limit int) ([]model.Message, error) {
	all, _ := s.ListByTicket(ctx, ticketID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type mockProducer struct {
	mu        sync.Mutex
	events    []queue.Event
	publishFn func(evt queue.Event) error
}

func (m *mockProducer) Publish(_ context.Context, evt queue.Event) error {
	if m.publishFn != nil {
		if err := m.publishFn(evt); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func (m *mockProducer) Close() error { return nil }

func (m *mockProducer) types() []queue.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]queue.EventType, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// fakeClock is advanced explicitly by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
