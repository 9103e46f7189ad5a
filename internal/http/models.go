package http

import (
	"time"

	"github.com/Flarenzy/simple-auth-api/internal/domain"
)

// IdentityResponse is the authenticated user as returned to clients.
type IdentityResponse struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email     string    `json:"email" example:"ann@example.com"`
	FirstName string    `json:"firstName" example:"Ann"`
	LastName  string    `json:"lastName" example:"Lee"`
	Role      string    `json:"role" example:"user"`
	CreatedAt time.Time `json:"createdAt" example:"2024-05-10T15:04:05Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-05-10T15:04:05Z"`
}

// ErrorResponse is a simple envelope for error messages.
type ErrorResponse struct {
	Error string `json:"error" example:"unauthorized"`
}

func identityToResponse(i domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:        i.ID,
		Email:     i.Email,
		FirstName: i.FirstName,
		LastName:  i.LastName,
		Role:      i.Role,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
