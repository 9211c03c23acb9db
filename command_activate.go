package registration

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ActivateAccountMessage presents an activation key for consumption.
type ActivateAccountMessage struct {
	ActivationKey string `json:"activation_key" doc:"Opaque token from the activation email."`
	OnResponse    func(resp *ActivateAccountResponse)
}

func (e ActivateAccountMessage) Type() string { return "registration.account.activate" }

// ActivateAccountResponse reports the outcome of an activation attempt.
// Unknown, spent and expired keys are expected flow, reported through the
// flags rather than as errors.
type ActivateAccountResponse struct {
	User        *User
	Found       bool
	Expired     bool
	AlreadyUsed bool
	Success     bool
}

// ActivateAccountHandler consumes an activation key within the configured
// window and flips the pending account active. Consumption is exclusive:
// the key update is a compare-and-set, so a key grants activation once.
type ActivateAccountHandler struct {
	repo   RepositoryManager
	config Config
	sink   EventSink
	logger Logger
}

func NewActivateAccountHandler(repo RepositoryManager, config Config) *ActivateAccountHandler {
	if config == nil {
		config = NewWorkflowConfig()
	}

	return &ActivateAccountHandler{
		repo:   repo,
		config: config,
		sink:   noopEventSink{},
		logger: defLogger{},
	}
}

func (h *ActivateAccountHandler) WithLogger(logger Logger) *ActivateAccountHandler {
	h.logger = logger
	return h
}

func (h *ActivateAccountHandler) WithEventSink(sink EventSink) *ActivateAccountHandler {
	h.sink = normalizeEventSink(sink)
	return h
}

func (h *ActivateAccountHandler) Execute(ctx context.Context, event ActivateAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during account activation")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivateAccountHandler) execute(ctx context.Context, event ActivateAccountMessage) error {
	resp := &ActivateAccountResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	profile, err := h.repo.RegistrationProfiles().GetByActivationKey(ctx, event.ActivationKey)
	if err != nil {
		// an unknown key is part of the expected flow, not an application error
		if repository.IsRecordNotFound(err) {
			h.respond(event, resp)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve activation record")
	}

	resp.Found = true

	if profile.Consumed() {
		resp.AlreadyUsed = true
		h.respond(event, resp)
		return nil
	}

	if profile.CreatedAt == nil {
		return goerrors.New("registration profile is missing creation date", goerrors.CategoryInternal)
	}

	expired, err := IsOutsideThresholdPeriod(*profile.CreatedAt, ActivationWindow(h.config.GetActivationDays()))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check activation window")
	}

	if expired {
		resp.Expired = true
		emitEvent(ctx, h.sink, h.logger, Event{
			EventType: EventActivationExpired,
			UserID:    profile.UserID.String(),
		})
		h.respond(event, resp)
		return nil
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		consumed, err := h.repo.RegistrationProfiles().ConsumeTx(ctx, tx, event.ActivationKey)
		if err != nil {
			// lost the race to a concurrent activation
			if repository.IsRecordNotFound(err) {
				resp.AlreadyUsed = true
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume activation key")
		}

		user, err := h.repo.Users().ActivateTx(ctx, tx, *consumed.UserID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate user")
		}

		resp.User = user
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account activation transaction failed")
	}

	if resp.User != nil {
		resp.Success = true
		emitEvent(ctx, h.sink, h.logger, Event{
			EventType: EventUserActivated,
			UserID:    resp.User.ID.String(),
			Email:     resp.User.Email,
		})
	}

	h.respond(event, resp)
	return nil
}

func (h *ActivateAccountHandler) respond(event ActivateAccountMessage, resp *ActivateAccountResponse) {
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}
}
