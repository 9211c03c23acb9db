package registration

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of a resolved account
type Identity interface {
	ID() string
	Username() string
	Email() string
	Active() bool
}

// Backend resolves credentials to an identity. Absence of a matching
// account, and a password mismatch, are normal negative outcomes and are
// reported as a nil Identity with a nil error; errors are reserved for
// infrastructure failures.
type Backend interface {
	Authenticate(ctx context.Context, identifier, password string) (Identity, error)
	GetUser(ctx context.Context, id string) (Identity, error)
}

// SessionContext is the slice of the host framework's session the login
// form interacts with: the browser cookie-support probe and the
// expire-on-close control for non persistent logins.
type SessionContext interface {
	TestCookieWorked() bool
	SetExpiryOnClose()
}

// Mailer delivers a rendered activation email. Transport is the host's
// concern; implementations should treat delivery as best effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Config holds registration workflow options
type Config interface {
	GetActivationDays() int
	GetRegistrationOpen() bool
	GetRequireSignupCode() bool
	GetUsernameMaxLength() int
	GetSiteName() string
	GetSiteDomain() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] REGISTRATION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] REGISTRATION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] REGISTRATION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type accountIdentity struct {
	id       string
	username string
	email    string
	active   bool
}

func (a accountIdentity) ID() string       { return a.id }
func (a accountIdentity) Username() string { return a.username }
func (a accountIdentity) Email() string    { return a.email }
func (a accountIdentity) Active() bool     { return a.active }

var _ Identity = accountIdentity{}

func identityFromUser(user *User) Identity {
	return accountIdentity{
		id:       user.ID.String(),
		username: user.Username,
		email:    user.Email,
		active:   user.IsActive,
	}
}

// HasUserUUID reports whether the identity's ID parses as a uuid.
func HasUserUUID(identity Identity) bool {
	if identity == nil {
		return false
	}
	_, err := uuid.Parse(identity.ID())
	return err == nil
}
