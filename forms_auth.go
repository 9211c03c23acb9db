package registration

import (
	"context"
	stderrors "errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	msgBadCredentials      = "Please enter a correct email and password."
	msgBadCredentialsMixed = "Please enter a correct username or email and password."
	msgAccountInactive     = "This account is inactive."
	msgCookiesRequired     = "Your Web browser doesn't appear to have cookies enabled. Cookies are required for logging in."
	msgIdentifierInvalid   = "Enter a valid e-mail address or username."
)

// AuthenticationForm validates login input against a Backend. The email
// variant is the default; WithUsernameIdentifier accepts either an email
// or a username. When a SessionContext is attached the form requires the
// test cookie to have round-tripped and, for non persistent logins,
// shortens the session to expire on browser close.
type AuthenticationForm struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
	Persistent bool   `form:"persistent" json:"persistent"`

	backend       Backend
	session       SessionContext
	allowUsername bool
	user          Identity
}

// AuthFormOption configures an AuthenticationForm.
type AuthFormOption func(*AuthenticationForm)

// WithSessionContext attaches the host session, enabling the cookie
// round-trip check and the expire-on-close side effect.
func WithSessionContext(session SessionContext) AuthFormOption {
	return func(f *AuthenticationForm) {
		f.session = session
	}
}

// WithUsernameIdentifier accepts a username in place of an email.
func WithUsernameIdentifier() AuthFormOption {
	return func(f *AuthenticationForm) {
		f.allowUsername = true
	}
}

// NewAuthenticationForm builds a form bound to the given backend. Callers
// populate the exported fields and then run Validate.
func NewAuthenticationForm(backend Backend, opts ...AuthFormOption) *AuthenticationForm {
	f := &AuthenticationForm{
		backend: backend,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// Validate runs the form. User input problems come back as
// validation.Errors; any other error is an infrastructure failure.
// Validation success caches the resolved identity for User / UserID.
func (f *AuthenticationForm) Validate(ctx context.Context) error {
	f.user = nil
	errs := validation.Errors{}

	if err := f.syntaxRules(); err != nil {
		var verrs validation.Errors
		if !stderrors.As(err, &verrs) {
			return err
		}
		for field, ferr := range verrs {
			errs[field] = ferr
		}
	}

	identifier := strings.TrimSpace(f.Identifier)

	if len(errs) == 0 && identifier != "" && f.Password != "" {
		identity, err := f.backend.Authenticate(ctx, identifier, f.Password)
		if err != nil {
			return err
		}

		switch {
		case identity == nil:
			message := msgBadCredentials
			if f.allowUsername {
				message = msgBadCredentialsMixed
			}
			addFormError(errs, "bad_credentials", message)
		case !identity.Active():
			addFormError(errs, "account_inactive", msgAccountInactive)
		default:
			f.user = identity
		}
	}

	if f.session != nil && !f.session.TestCookieWorked() {
		addFormError(errs, "cookies_required", msgCookiesRequired)
	}

	if len(errs) > 0 {
		f.user = nil
		return errs
	}

	if f.session != nil && !f.Persistent {
		f.session.SetExpiryOnClose()
	}

	return nil
}

// User returns the resolved identity, nil until Validate succeeds.
func (f *AuthenticationForm) User() Identity {
	return f.user
}

// UserID returns the resolved identity's id, empty until Validate
// succeeds.
func (f *AuthenticationForm) UserID() string {
	if f.user == nil {
		return ""
	}
	return f.user.ID()
}

func (f *AuthenticationForm) syntaxRules() error {
	identifierRules := []validation.Rule{validation.Required}

	if f.allowUsername {
		identifierRules = append(identifierRules, validation.By(validEmailOrUsername))
	} else {
		identifierRules = append(identifierRules, is.EmailFormat)
	}

	return validation.ValidateStruct(f,
		validation.Field(&f.Identifier, identifierRules...),
		validation.Field(&f.Password, validation.Required),
	)
}

func validEmailOrUsername(value any) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.Contains(s, "@") {
		return is.EmailFormat.Validate(s)
	}

	if !usernameRe.MatchString(s) {
		return stderrors.New(msgIdentifierInvalid)
	}

	return nil
}
