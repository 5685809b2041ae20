package service

import (
	"errors"

	"tickevo.app/backend/internal/domain"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingToken       = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrTicketNotFound     = errors.New("ticket not found")

	ErrNotYourTurn     = domain.ErrNotYourTurn
	ErrCreatorMustWait = domain.ErrCreatorMustWait
	ErrInvalidStage    = domain.ErrInvalidStage
	ErrNotQueued       = domain.ErrNotQueued
)
