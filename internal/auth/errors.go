package auth

// Kind classifies an authentication or authorization failure.
type Kind int

const (
	KindUnauthenticated Kind = iota + 1
	KindForbidden
	KindNotFound
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	default:
		return "unknown"
	}
}

// Error is a client-facing auth decision. Message is safe to return as is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrUnauthenticated is returned when the request carries no credential.
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Message: "Not authenticated"}
	// ErrInvalidAPIKey is returned when no user owns the presented API key.
	ErrInvalidAPIKey = &Error{Kind: KindForbidden, Message: "Invalid API key"}
	// ErrInvalidToken covers malformed, badly signed and expired tokens alike.
	ErrInvalidToken = &Error{Kind: KindForbidden, Message: "Could not validate credentials"}
	// ErrUserNotFound is returned when a valid token names a user that no longer exists.
	ErrUserNotFound = &Error{Kind: KindNotFound, Message: "User not found"}
	// ErrInactiveUser is returned by the active guard.
	ErrInactiveUser = &Error{Kind: KindBadRequest, Message: "Inactive user"}
	// ErrNotSuperuser is returned by the superuser guard.
	ErrNotSuperuser = &Error{Kind: KindForbidden, Message: "The user doesn't have enough privileges"}
)
