package registration

import (
	"context"
	stderrors "errors"
	"regexp"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
)

// FormErrorKey is the key form-level (non field) messages accumulate
// under in validation.Errors.
const FormErrorKey = "form"

var usernameRe = regexp.MustCompile(`^\w+$`)

// DefaultBannedDomains is the stock free-webmail block list used by
// WithBannedDomains when no explicit list is given.
var DefaultBannedDomains = []string{
	"aim.com", "aol.com", "email.com", "gmail.com",
	"googlemail.com", "hotmail.com", "hushmail.com",
	"msn.com", "mail.ru", "mailinator.com", "live.com",
	"yahoo.com",
}

const (
	msgUsernameFormat   = "This value must contain only letters, numbers and underscores."
	msgUsernameTaken    = "A user with that username already exists."
	msgEmailTaken       = "This email address is already in use. Please supply a different email address."
	msgEmailBanned      = "Registration using free email addresses is prohibited. Please supply a different email address."
	msgPasswordMismatch = "The two password fields didn't match."
	msgEmailMismatch    = "The two email fields didn't match."
	msgTOSRequired      = "You must agree to the terms to register"
)

// RegistrationForm is the raw sign-up record submitted by a caller.
type RegistrationForm struct {
	Username  string `form:"username" json:"username"`
	Email     string `form:"email" json:"email"`
	Email2    string `form:"email2" json:"email2"`
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
	TOS       bool   `form:"tos" json:"tos"`
}

// RegistrationData is the normalized output of a successful validation.
type RegistrationData struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountChecker provides the existence probes the form validator uses as
// fast-path uniqueness hints.
type AccountChecker interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// FormValidator validates RegistrationForm records. Variant behavior is
// selected with FormOption values; every option is an independent rule
// layered over the base form.
type FormValidator struct {
	store           AccountChecker
	requireUsername bool
	uniqueEmail     bool
	confirmEmail    bool
	requireTOS      bool
	bannedDomains   []string
	maxUsername     int
}

// FormOption configures a FormValidator.
type FormOption func(*FormValidator)

// WithUsername requires and validates the username field.
func WithUsername() FormOption {
	return func(v *FormValidator) {
		v.requireUsername = true
	}
}

// WithUsernameMaxLength caps the username length.
func WithUsernameMaxLength(n int) FormOption {
	return func(v *FormValidator) {
		if n > 0 {
			v.maxUsername = n
		}
	}
}

// WithUniqueEmail enforces case-insensitive email uniqueness and
// lower-cases the normalized email.
func WithUniqueEmail() FormOption {
	return func(v *FormValidator) {
		v.uniqueEmail = true
	}
}

// WithBannedDomains rejects emails whose domain is listed. Call with no
// arguments to use DefaultBannedDomains.
func WithBannedDomains(domains ...string) FormOption {
	return func(v *FormValidator) {
		if len(domains) == 0 {
			domains = DefaultBannedDomains
		}
		v.bannedDomains = make([]string, 0, len(domains))
		for _, d := range domains {
			v.bannedDomains = append(v.bannedDomains, strings.ToLower(strings.TrimSpace(d)))
		}
	}
}

// WithEmailConfirmation requires the email to be entered twice.
func WithEmailConfirmation() FormOption {
	return func(v *FormValidator) {
		v.confirmEmail = true
	}
}

// WithTermsOfService requires the terms-of-service acceptance flag.
func WithTermsOfService() FormOption {
	return func(v *FormValidator) {
		v.requireTOS = true
	}
}

// NewFormValidator builds a validator over the given store.
func NewFormValidator(store AccountChecker, opts ...FormOption) *FormValidator {
	v := &FormValidator{
		store:       store,
		maxUsername: DefaultUsernameMaxLength,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	return v
}

// Validate checks the form and returns the normalized record on success.
// User input problems accumulate in validation.Errors; an error of any
// other type signals an infrastructure failure, not bad input.
func (v *FormValidator) Validate(ctx context.Context, form RegistrationForm) (*RegistrationData, error) {
	errs := validation.Errors{}

	if err := v.syntaxRules(&form); err != nil {
		var verrs validation.Errors
		if !stderrors.As(err, &verrs) {
			return nil, err
		}
		for field, ferr := range verrs {
			errs[field] = ferr
		}
	}

	username := strings.TrimSpace(form.Username)
	if v.requireUsername && errs["username"] == nil && username != "" {
		taken, err := v.store.UsernameTaken(ctx, username)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username availability")
		}
		if taken {
			errs["username"] = validation.NewError("username_taken", msgUsernameTaken)
		}
	}

	email := strings.TrimSpace(form.Email)
	if errs["email"] == nil && email != "" {
		if v.uniqueEmail {
			taken, err := v.store.EmailTaken(ctx, email)
			if err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
			}
			if taken {
				errs["email"] = validation.NewError("email_taken", msgEmailTaken)
			}
		}

		if errs["email"] == nil && len(v.bannedDomains) > 0 {
			if at := strings.LastIndex(email, "@"); at >= 0 {
				domain := strings.ToLower(email[at+1:])
				if slices.Contains(v.bannedDomains, domain) {
					errs["email"] = validation.NewError("email_domain_banned", msgEmailBanned)
				}
			}
		}
	}

	if form.Password1 != "" && form.Password2 != "" && form.Password1 != form.Password2 {
		addFormError(errs, "password_mismatch", msgPasswordMismatch)
	}

	if v.confirmEmail && email != "" && form.Email2 != "" {
		if !strings.EqualFold(email, strings.TrimSpace(form.Email2)) {
			addFormError(errs, "email_mismatch", msgEmailMismatch)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if v.uniqueEmail {
		email = strings.ToLower(email)
	}

	return &RegistrationData{
		Username: username,
		Email:    email,
		Password: form.Password1,
	}, nil
}

func (v *FormValidator) syntaxRules(form *RegistrationForm) error {
	fields := []*validation.FieldRules{
		validation.Field(&form.Email, validation.Required, is.EmailFormat),
		validation.Field(&form.Password1, validation.Required),
		validation.Field(&form.Password2, validation.Required),
	}

	if v.requireUsername {
		fields = append(fields, validation.Field(&form.Username,
			validation.Required,
			validation.Length(1, v.maxUsername),
			validation.Match(usernameRe).Error(msgUsernameFormat),
		))
	}

	if v.confirmEmail {
		fields = append(fields, validation.Field(&form.Email2,
			validation.Required,
			is.EmailFormat,
		))
	}

	if v.requireTOS {
		fields = append(fields, validation.Field(&form.TOS,
			validation.By(requireAccepted),
		))
	}

	return validation.ValidateStruct(form, fields...)
}

func requireAccepted(value any) error {
	if accepted, _ := value.(bool); !accepted {
		return stderrors.New(msgTOSRequired)
	}
	return nil
}

func addFormError(errs validation.Errors, code, message string) {
	if existing, ok := errs[FormErrorKey]; ok {
		errs[FormErrorKey] = validation.NewError(code, existing.Error()+" "+message)
		return
	}
	errs[FormErrorKey] = validation.NewError(code, message)
}
