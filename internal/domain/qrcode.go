package domain

import "time"

// QRCode is a rendered QR image stored on behalf of a user.
type QRCode struct {
	ID        int64
	UserID    int64
	ObjectKey string
	URL       string
	Format    string
	CreatedAt time.Time
}
