package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"qrcode-api/internal/domain"
	"qrcode-api/internal/pagination"
	"qrcode-api/internal/repository"
)

const createQRCodesTable = `
CREATE TABLE IF NOT EXISTS qr_codes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	object_key TEXT NOT NULL UNIQUE,
	url TEXT NOT NULL,
	format TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

const createQRCodesUserIndex = `CREATE INDEX IF NOT EXISTS idx_qr_codes_user_id ON qr_codes(user_id);`

const qrCodeColumns = `id, user_id, object_key, url, format, created_at`

type QRCodeRepository struct {
	db *sql.DB
}

func NewQRCodeRepository(db *sql.DB) repository.QRCodeRepository {
	return &QRCodeRepository{db: db}
}

func (r *QRCodeRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createQRCodesTable); err != nil {
		return fmt.Errorf("create qr_codes table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createQRCodesUserIndex); err != nil {
		return fmt.Errorf("create qr_codes user index: %w", err)
	}
	return nil
}

func (r *QRCodeRepository) Create(ctx context.Context, code *domain.QRCode) (int64, error) {
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO qr_codes (user_id, object_key, url, format, created_at)
VALUES (?, ?, ?, ?, ?)`,
		code.UserID,
		code.ObjectKey,
		code.URL,
		code.Format,
		code.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert qr code: %w", repository.ErrConflict)
		}
		return 0, fmt.Errorf("insert qr code: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("qr code last insert id: %w", err)
	}
	code.ID = id
	return id, nil
}

func (r *QRCodeRepository) Get(ctx context.Context, id int64) (*domain.QRCode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+qrCodeColumns+` FROM qr_codes WHERE id = ?`, id)
	return scanQRCode(row)
}

func (r *QRCodeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM qr_codes WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete qr code: %w", err)
	}
	return expectAffected(res, "delete qr code")
}

func (r *QRCodeRepository) Count(ctx context.Context, filter repository.QRCodeFilter) (int64, error) {
	where, args := qrCodeWhere(filter)
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qr_codes`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count qr codes: %w", err)
	}
	return n, nil
}

func (r *QRCodeRepository) List(ctx context.Context, filter repository.QRCodeFilter, q pagination.Query) ([]domain.QRCode, error) {
	where, args := qrCodeWhere(filter)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, `SELECT `+qrCodeColumns+` FROM qr_codes`+where+` `+orderBy(q)+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query qr codes: %w", err)
	}
	defer rows.Close()

	var codes []domain.QRCode
	for rows.Next() {
		code, err := scanQRCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *code)
	}
	return codes, rows.Err()
}

func qrCodeWhere(filter repository.QRCodeFilter) (string, []any) {
	if filter.UserID == 0 {
		return "", nil
	}
	return ` WHERE user_id = ?`, []any{filter.UserID}
}

func scanQRCode(row rowScanner) (*domain.QRCode, error) {
	var code domain.QRCode
	if err := row.Scan(
		&code.ID,
		&code.UserID,
		&code.ObjectKey,
		&code.URL,
		&code.Format,
		&code.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("qr code: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan qr code: %w", err)
	}
	return &code, nil
}
