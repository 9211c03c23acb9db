package registration

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage carries one registration attempt: the validated
// form output plus an optional one time signup code.
type RegisterAccountMessage struct {
	Username   string `json:"username" doc:"Desired username, generated from the email when empty."`
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
	Password   string `json:"password" doc:"Plaintext password, hashed before storage."`
	SignupCode string `json:"signup_code,omitempty" doc:"One time signup code, when the workflow requires one."`
	UseHashid  bool
	OnResponse func(resp *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "registration.account.register" }

// RegisterAccountResponse reports the created records.
type RegisterAccountResponse struct {
	User    *User
	Profile *RegistrationProfile
	Code    *RegistrationCode
	Success bool
}

// RegisterAccountHandler runs the registration workflow: claim the signup
// code when one is involved, create the inactive account together with
// its activation record in one transaction, dispatch the activation
// email, and emit a user.registered event.
type RegisterAccountHandler struct {
	repo     RepositoryManager
	config   Config
	notifier ActivationNotifier
	sink     EventSink
	logger   Logger
}

func NewRegisterAccountHandler(repo RepositoryManager, config Config) *RegisterAccountHandler {
	if config == nil {
		config = NewWorkflowConfig()
	}

	return &RegisterAccountHandler{
		repo:     repo,
		config:   config,
		notifier: &logActivationNotifier{},
		sink:     noopEventSink{},
		logger:   defLogger{},
	}
}

func (h *RegisterAccountHandler) WithLogger(logger Logger) *RegisterAccountHandler {
	h.logger = logger
	return h
}

// WithActivationNotifier configures the activation email dispatcher.
func (h *RegisterAccountHandler) WithActivationNotifier(notifier ActivationNotifier) *RegisterAccountHandler {
	if notifier != nil {
		h.notifier = notifier
	}
	return h
}

// WithEventSink configures the sink user.registered events go to.
func (h *RegisterAccountHandler) WithEventSink(sink EventSink) *RegisterAccountHandler {
	h.sink = normalizeEventSink(sink)
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if !h.config.GetRegistrationOpen() {
		emitEvent(ctx, h.sink, h.logger, Event{
			EventType: EventRegistrationRefused,
			Email:     event.Email,
			Metadata:  map[string]any{"reason": "registration_closed"},
		})
		return ErrRegistrationClosed
	}

	signupCode := strings.TrimSpace(event.SignupCode)
	if h.config.GetRequireSignupCode() && signupCode == "" {
		return ErrSignupCodeRequired
	}

	username := strings.TrimSpace(event.Username)
	if username == "" {
		var err error
		username, err = GenerateUniqueUsername(ctx, h.repo.Users(), event.Email, h.config.GetUsernameMaxLength())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate username")
		}
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Username:     username,
		Email:        event.Email,
		PasswordHash: hash,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = id
		}
	}

	resp := &RegisterAccountResponse{}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		// The claim is a compare-and-set inside this transaction: an
		// unknown or spent code rolls everything back, leaving no
		// partial account behind.
		if signupCode != "" {
			code, err := h.repo.RegistrationCodes().ClaimTx(ctx, tx, signupCode, user.ID)
			if err != nil {
				if repository.IsRecordNotFound(err) {
					return ErrInvalidSignupCode
				}
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to claim signup code")
			}
			resp.Code = code
		}

		profile := &RegistrationProfile{
			UserID:        &user.ID,
			ActivationKey: NewActivationKey(),
		}

		if profile, err = h.repo.RegistrationProfiles().CreateTx(ctx, tx, profile); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create registration profile")
		}

		resp.User = user
		resp.Profile = profile
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return err
	}

	// Dispatch is fire and forget from the workflow's perspective:
	// failure to deliver is the notifier's concern, not a registration
	// failure.
	if err := h.notifier.SendActivationEmail(ctx, resp.User, resp.Profile); err != nil {
		h.logger.Error("activation email dispatch error: %v", err)
	}

	emitEvent(ctx, h.sink, h.logger, Event{
		EventType: EventUserRegistered,
		UserID:    resp.User.ID.String(),
		Email:     resp.User.Email,
	})

	if resp.Code != nil {
		emitEvent(ctx, h.sink, h.logger, Event{
			EventType: EventSignupCodeConsumed,
			UserID:    resp.User.ID.String(),
			Email:     resp.User.Email,
			Metadata:  map[string]any{"code": resp.Code.Code},
		})
	}

	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
