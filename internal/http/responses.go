package http

import (
	"time"

	"qrcode-api/internal/domain"
	"qrcode-api/internal/pagination"
)

type UserResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	APIKey      string `json:"api_key"`
	CreatedAt   string `json:"created_at"`
}

// PublicUserResponse is what superusers see when listing other accounts.
type PublicUserResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	CreatedAt   string `json:"created_at"`
}

type QRCodeResponse struct {
	ID        int64  `json:"id"`
	QRCodeURL string `json:"qrcode_url"`
	Format    string `json:"file_format"`
	UserID    int64  `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		APIKey:      user.APIKey,
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func userToPublicResponse(user domain.User) PublicUserResponse {
	return PublicUserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func qrCodeToResponse(code domain.QRCode) QRCodeResponse {
	return QRCodeResponse{
		ID:        code.ID,
		QRCodeURL: code.URL,
		Format:    code.Format,
		UserID:    code.UserID,
		CreatedAt: code.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func qrCodePageToResponse(page pagination.Page[domain.QRCode]) pagination.Page[QRCodeResponse] {
	return pagination.Map(page, qrCodeToResponse)
}
