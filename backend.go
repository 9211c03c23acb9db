package registration

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// UserFinder is the slice of the account store the backend needs.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// EmailBackend resolves an email (optionally an email or username) plus a
// plaintext password to an account identity. Lookup is case-insensitive
// on email, matching the normalization applied at registration time.
type EmailBackend struct {
	store         UserFinder
	usernameMatch bool
	logger        Logger
}

var _ Backend = (*EmailBackend)(nil)

// NewEmailBackend returns a backend that matches on email only.
func NewEmailBackend(store UserFinder) *EmailBackend {
	return &EmailBackend{
		store:  store,
		logger: defLogger{},
	}
}

func (b *EmailBackend) WithLogger(logger Logger) *EmailBackend {
	b.logger = logger
	return b
}

// WithUsernameLookup makes identifiers without an "@" resolve against the
// username column instead of email.
func (b *EmailBackend) WithUsernameLookup(enabled bool) *EmailBackend {
	b.usernameMatch = enabled
	return b
}

// Authenticate resolves credentials to an identity. A missing account and
// a password mismatch both return (nil, nil): absence is a normal
// outcome, not a failure.
func (b *EmailBackend) Authenticate(ctx context.Context, identifier, password string) (Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil
	}

	var err error
	var user *User

	if b.usernameMatch && !strings.Contains(identifier, "@") {
		user, err = b.store.GetByIdentifier(ctx, identifier)
	} else {
		user, err = b.store.GetByEmail(ctx, identifier)
	}

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during authentication")
	}

	if user == nil {
		return nil, nil
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify password hash")
	}

	return identityFromUser(user), nil
}

// GetUser looks up an identity by its primary identifier. Absence returns
// (nil, nil).
func (b *EmailBackend) GetUser(ctx context.Context, id string) (Identity, error) {
	user, err := b.store.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user by id")
	}

	if user == nil {
		return nil, nil
	}

	return identityFromUser(user), nil
}
