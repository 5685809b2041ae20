package dto

import "tickevo.app/backend/internal/model"

type CredentialsRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=72"`
}

type SignupResponse struct {
	Success bool  `json:"success"`
	UserID  int64 `json:"userId,string"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId,string"`
	Username string `json:"username"`
}

type ProfileResponse struct {
	ID           int64    `json:"id,string"`
	Username     string   `json:"username"`
	Experience   int64    `json:"experience"`
	TicketTokens int64    `json:"ticketTokens"`
	Badges       []string `json:"badges"`
}

func ToProfileResponse(u *model.User) ProfileResponse {
	badges := u.Badges
	if badges == nil {
		badges = []string{}
	}
	return ProfileResponse{
		ID:           u.ID,
		Username:     u.Username,
		Experience:   u.Experience,
		TicketTokens: u.TicketTokens,
		Badges:       badges,
	}
}
