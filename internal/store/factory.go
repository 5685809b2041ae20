package store

import (
	"tickevo.app/backend/core/db"
)

type Stores struct {
	q db.DBTX
}

func NewStores(q db.DBTX) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Users() UserStore {
	return newUserStore(s.q)
}

func (s *Stores) Tickets() TicketStore {
	return newTicketStore(s.q)
}

func (s *Stores) Messages() MessageStore {
	return newMessageStore(s.q)
}
