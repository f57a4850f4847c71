package httpserver

import (
	"time"

	"github.com/agrotrack/livestock_tracker/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

type RecordShipmentRequest struct {
	BatchCode    string    `json:"batch_code"`
	OriginSite   string    `json:"origin_site"`
	DestSite     string    `json:"dest_site"`
	NetHeadCount int       `json:"net_head_count"`
	LoadingStart time.Time `json:"loading_start"`
	LoadingEnd   time.Time `json:"loading_end"`
}

type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  *models.User `json:"user,omitempty"`
}
