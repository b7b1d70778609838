package repository

import (
	"context"

	"qrcode-api/internal/domain"
	"qrcode-api/internal/pagination"
)

// QRCodeFilter narrows QR code listings. A zero UserID matches every owner.
type QRCodeFilter struct {
	UserID int64
}

// QRCodeRepository exposes persistence operations for stored QR codes.
type QRCodeRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, code *domain.QRCode) (int64, error)
	Get(ctx context.Context, id int64) (*domain.QRCode, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, filter QRCodeFilter) (int64, error)
	List(ctx context.Context, filter QRCodeFilter, q pagination.Query) ([]domain.QRCode, error)
}

// QRCodeSortFields is the allow-list for sorting QR code listings.
var QRCodeSortFields = pagination.NewSortFields("created_at", "id", map[string]string{
	"created_at": "created_at",
})
