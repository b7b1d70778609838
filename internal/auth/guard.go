package auth

import "qrcode-api/internal/domain"

// Guard is an authorization predicate applied after a user is resolved.
// Guards read only the user they are given and must run on every request.
type Guard func(user *domain.User) error

// Active rejects users whose account is disabled.
func Active(user *domain.User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsActive {
		return ErrInactiveUser
	}
	return nil
}

// Superuser layers on Active and additionally requires the superuser flag.
func Superuser(user *domain.User) error {
	if err := Active(user); err != nil {
		return err
	}
	if !user.IsSuperuser {
		return ErrNotSuperuser
	}
	return nil
}

// Chain runs guards in order and stops at the first failure.
func Chain(guards ...Guard) Guard {
	return func(user *domain.User) error {
		for _, g := range guards {
			if err := g(user); err != nil {
				return err
			}
		}
		return nil
	}
}
