package registration

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// TransactionManager runs a unit of work inside one transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	TransactionManager
	Validate() error
	MustValidate()
	Users() Users
	RegistrationProfiles() RegistrationProfiles
	RegistrationCodes() RegistrationCodes
}

type mngr struct {
	db       *bun.DB
	users    Users
	profiles RegistrationProfiles
	codes    RegistrationCodes
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		users:    NewUsersRepository(db),
		profiles: NewRegistrationProfilesRepository(db),
		codes:    NewRegistrationCodesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.profiles == nil {
		return errors.New("repository registrationProfiles should be initialized")
	}

	if m.codes == nil {
		return errors.New("repository registrationCodes should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) RegistrationProfiles() RegistrationProfiles {
	return m.profiles
}

func (m mngr) RegistrationCodes() RegistrationCodes {
	return m.codes
}
