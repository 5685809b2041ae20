package service

import (
	"tickevo.app/backend/common/token"
)

type Services struct {
	deps   Deps
	issuer *token.Issuer
}

func NewServices(deps Deps, issuer *token.Issuer) *Services {
	return &Services{
		deps:   deps.withDefaults(),
		issuer: issuer,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.deps, s.issuer, 0)
}

func (s *Services) Tickets() TicketService {
	return NewTicketService(s.deps)
}

func (s *Services) Messages() MessageService {
	return NewMessageService(s.deps)
}
