package response

import (
	"shuttlecourt/internal/usecase/queries"

	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	User        *queries.UserView `json:"user"`
}

type IDResponse struct {
	ID uuid.UUID `json:"id"`
}

type SweepResponse struct {
	Processed int `json:"processed"`
}
