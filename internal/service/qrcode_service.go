package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"qrcode-api/internal/domain"
	"qrcode-api/internal/pagination"
	"qrcode-api/internal/qrcode"
	"qrcode-api/internal/repository"
	"qrcode-api/internal/storage"
)

// ErrQRCodeNotFound is returned when the addressed QR code does not exist.
var ErrQRCodeNotFound = errors.New("QRCode with the id cannot be found")

// QRCodeService renders, stores and lists QR codes.
type QRCodeService interface {
	Create(ctx context.Context, owner *domain.User, data string, opts qrcode.Options) (*domain.QRCode, error)
	Get(ctx context.Context, id int64) (*domain.QRCode, error)
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context, params pagination.Params, sorting pagination.Sorting) (pagination.Page[domain.QRCode], error)
	ListByUser(ctx context.Context, userID int64, params pagination.Params, sorting pagination.Sorting) (pagination.Page[domain.QRCode], error)
}

type qrCodeService struct {
	codes   repository.QRCodeRepository
	storage storage.Service
	prefix  string
	logger  logrus.FieldLogger
}

// NewQRCodeService stores images under keyPrefix inside store.
func NewQRCodeService(codes repository.QRCodeRepository, store storage.Service, keyPrefix string, logger logrus.FieldLogger) QRCodeService {
	return &qrCodeService{
		codes:   codes,
		storage: store,
		prefix:  keyPrefix,
		logger:  logger.WithField("component", "qrcodes"),
	}
}

func (s *qrCodeService) Create(ctx context.Context, owner *domain.User, data string, opts qrcode.Options) (*domain.QRCode, error) {
	png, err := qrcode.Render(data, opts)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	key := path.Join(s.prefix, uuid.NewString()+"."+qrcode.FormatPNG)
	if err := s.storage.Put(ctx, key, bytes.NewReader(png), "image/png"); err != nil {
		return nil, fmt.Errorf("store qr image: %w", err)
	}

	code := &domain.QRCode{
		UserID:    owner.ID,
		ObjectKey: key,
		URL:       s.storage.URL(key),
		Format:    qrcode.FormatPNG,
	}
	if _, err := s.codes.Create(ctx, code); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.WithError(delErr).WithField("key", key).Warn("remove orphaned qr image")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"qrcode_id": code.ID, "user_id": owner.ID}).Debug("qr code created")
	return code, nil
}

func (s *qrCodeService) Get(ctx context.Context, id int64) (*domain.QRCode, error) {
	code, err := s.codes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}
	return code, nil
}

// Delete removes the stored image first so a failed storage call leaves the
// record in place for a retry.
func (s *qrCodeService) Delete(ctx context.Context, id int64) error {
	code, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, code.ObjectKey); err != nil {
		return fmt.Errorf("delete qr image: %w", err)
	}
	if err := s.codes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQRCodeNotFound
		}
		return err
	}
	return nil
}

func (s *qrCodeService) ListAll(ctx context.Context, params pagination.Params, sorting pagination.Sorting) (pagination.Page[domain.QRCode], error) {
	return s.list(ctx, repository.QRCodeFilter{}, params, sorting)
}

func (s *qrCodeService) ListByUser(ctx context.Context, userID int64, params pagination.Params, sorting pagination.Sorting) (pagination.Page[domain.QRCode], error) {
	return s.list(ctx, repository.QRCodeFilter{UserID: userID}, params, sorting)
}

func (s *qrCodeService) list(ctx context.Context, filter repository.QRCodeFilter, params pagination.Params, sorting pagination.Sorting) (pagination.Page[domain.QRCode], error) {
	src := pagination.SourceFuncs[domain.QRCode]{
		CountFunc: func(ctx context.Context) (int64, error) {
			return s.codes.Count(ctx, filter)
		},
		FindFunc: func(ctx context.Context, q pagination.Query) ([]domain.QRCode, error) {
			return s.codes.List(ctx, filter, q)
		},
	}
	return pagination.Paginate[domain.QRCode](ctx, src, repository.QRCodeSortFields, params, sorting)
}
