package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/sirupsen/logrus"

	"qrcode-api/internal/auth"
	"qrcode-api/internal/domain"
	"qrcode-api/internal/pagination"
	"qrcode-api/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the addressed user does not exist.
	ErrUserNotFound = errors.New("the user with this id does not exist")
)

// ValidationError wraps input that failed validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9\-_.]+$`)

const minPasswordLength = 8

// NewUser carries the fields accepted when creating an account.
type NewUser struct {
	Username    string
	Email       string
	Password    string
	IsActive    bool
	IsSuperuser bool
}

func (n NewUser) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Username, validation.Required, validation.Length(3, 64), validation.Match(usernamePattern)),
		validation.Field(&n.Email, validation.Required, is.Email),
		validation.Field(&n.Password, validation.Required, validation.Length(minPasswordLength, 128)),
	)
}

// ProfileUpdate changes the caller's own account. Nil fields are left alone.
type ProfileUpdate struct {
	Email    *string
	Password *string
}

func (p ProfileUpdate) Validate() error {
	errs := validation.Errors{}
	if p.Email != nil {
		errs["email"] = validation.Validate(*p.Email, validation.Required, is.Email)
	}
	if p.Password != nil {
		errs["password"] = validation.Validate(*p.Password, validation.Required, validation.Length(minPasswordLength, 128))
	}
	return errs.Filter()
}

// UserService describes user lifecycle operations.
type UserService interface {
	SignUp(ctx context.Context, username, email, password string) (*domain.User, error)
	Create(ctx context.Context, in NewUser) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User, in ProfileUpdate) (*domain.User, error)
	RotateAPIKey(ctx context.Context, user *domain.User) (*domain.User, error)
	SetFlags(ctx context.Context, id int64, active, superuser *bool) (*domain.User, error)
	List(ctx context.Context, params pagination.Params, sorting pagination.Sorting) (pagination.Page[domain.User], error)
	EnsureSuperuser(ctx context.Context, username, email, password string) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	logger logrus.FieldLogger
}

func NewUserService(users repository.UserRepository, logger logrus.FieldLogger) UserService {
	return &userService{
		users:  users,
		logger: logger.WithField("component", "users"),
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) SignUp(ctx context.Context, username, email, password string) (*domain.User, error) {
	return s.Create(ctx, NewUser{
		Username: username,
		Email:    email,
		Password: password,
		IsActive: true,
	})
}

func (s *userService) Create(ctx context.Context, in NewUser) (*domain.User, error) {
	in.Username = normalizeUsername(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	apiKey, err := auth.NewAPIKey()
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsActive:     in.IsActive,
		IsSuperuser:  in.IsSuperuser,
		APIKey:       apiKey,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "superuser": user.IsSuperuser}).Info("user created")
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, user *domain.User, in ProfileUpdate) (*domain.User, error) {
	if in.Email != nil {
		normalized := normalizeEmail(*in.Email)
		in.Email = &normalized
	}
	if err := in.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}
	if in.Email == nil && in.Password == nil {
		return s.GetByID(ctx, user.ID)
	}

	var hash *string
	if in.Password != nil {
		hashed, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		hash = &hashed
	}

	if err := s.users.UpdateProfile(ctx, user.ID, in.Email, hash); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrUserAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, user.ID)
}

// RotateAPIKey overwrites the stored key; the previous key stops resolving
// immediately.
func (s *userService) RotateAPIKey(ctx context.Context, user *domain.User) (*domain.User, error) {
	key, err := auth.NewAPIKey()
	if err != nil {
		return nil, err
	}
	if err := s.users.SetAPIKey(ctx, user.ID, key); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.logger.WithField("user_id", user.ID).Info("api key rotated")
	return s.GetByID(ctx, user.ID)
}

// SetFlags changes only the flags that are given, in one statement.
func (s *userService) SetFlags(ctx context.Context, id int64, active, superuser *bool) (*domain.User, error) {
	if active == nil && superuser == nil {
		return s.GetByID(ctx, id)
	}
	if err := s.users.SetFlags(ctx, id, active, superuser); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": id, "active": user.IsActive, "superuser": user.IsSuperuser}).Info("user flags changed")
	return user, nil
}

func (s *userService) List(ctx context.Context, params pagination.Params, sorting pagination.Sorting) (pagination.Page[domain.User], error) {
	src := pagination.SourceFuncs[domain.User]{
		CountFunc: s.users.Count,
		FindFunc:  s.users.List,
	}
	return pagination.Paginate[domain.User](ctx, src, repository.UserSortFields, params, sorting)
}

// EnsureSuperuser creates the bootstrap superuser unless the username is
// already taken. It is safe to call on every start.
func (s *userService) EnsureSuperuser(ctx context.Context, username, email, password string) (*domain.User, error) {
	existing, err := s.users.GetByUsername(ctx, normalizeUsername(username))
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup superuser: %w", err)
	}

	return s.Create(ctx, NewUser{
		Username:    username,
		Email:       email,
		Password:    password,
		IsActive:    true,
		IsSuperuser: true,
	})
}
