package registration_test

import (
	"context"
	"database/sql"

	registration "github.com/goliatone/go-registration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockUsers implements registration.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByID(ctx context.Context, id string) (*registration.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*registration.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string) (*registration.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*registration.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*registration.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*registration.User)
	return user, args.Error(1)
}

func (m *MockUsers) UsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) EmailTaken(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *registration.User) (*registration.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*registration.User)
	return user, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *registration.User) (*registration.User, error) {
	args := m.Called(ctx, tx, record)
	user, _ := args.Get(0).(*registration.User)
	return user, args.Error(1)
}

func (m *MockUsers) ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*registration.User, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*registration.User)
	return user, args.Error(1)
}

// MockRegistrationProfiles implements registration.RegistrationProfiles
type MockRegistrationProfiles struct {
	mock.Mock
}

func (m *MockRegistrationProfiles) GetByID(ctx context.Context, id string) (*registration.RegistrationProfile, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*registration.RegistrationProfile)
	return record, args.Error(1)
}

func (m *MockRegistrationProfiles) GetByActivationKey(ctx context.Context, key string) (*registration.RegistrationProfile, error) {
	args := m.Called(ctx, key)
	record, _ := args.Get(0).(*registration.RegistrationProfile)
	return record, args.Error(1)
}

func (m *MockRegistrationProfiles) Create(ctx context.Context, record *registration.RegistrationProfile) (*registration.RegistrationProfile, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(*registration.RegistrationProfile)
	return created, args.Error(1)
}

func (m *MockRegistrationProfiles) CreateTx(ctx context.Context, tx bun.IDB, record *registration.RegistrationProfile) (*registration.RegistrationProfile, error) {
	args := m.Called(ctx, tx, record)
	created, _ := args.Get(0).(*registration.RegistrationProfile)
	return created, args.Error(1)
}

func (m *MockRegistrationProfiles) ConsumeTx(ctx context.Context, tx bun.IDB, key string) (*registration.RegistrationProfile, error) {
	args := m.Called(ctx, tx, key)
	record, _ := args.Get(0).(*registration.RegistrationProfile)
	return record, args.Error(1)
}

// MockRegistrationCodes implements registration.RegistrationCodes
type MockRegistrationCodes struct {
	mock.Mock
}

func (m *MockRegistrationCodes) GetByCode(ctx context.Context, code string) (*registration.RegistrationCode, error) {
	args := m.Called(ctx, code)
	record, _ := args.Get(0).(*registration.RegistrationCode)
	return record, args.Error(1)
}

func (m *MockRegistrationCodes) Create(ctx context.Context, record *registration.RegistrationCode) (*registration.RegistrationCode, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(*registration.RegistrationCode)
	return created, args.Error(1)
}

func (m *MockRegistrationCodes) CreateTx(ctx context.Context, tx bun.IDB, record *registration.RegistrationCode) (*registration.RegistrationCode, error) {
	args := m.Called(ctx, tx, record)
	created, _ := args.Get(0).(*registration.RegistrationCode)
	return created, args.Error(1)
}

func (m *MockRegistrationCodes) ClaimTx(ctx context.Context, tx bun.IDB, code string, userID uuid.UUID) (*registration.RegistrationCode, error) {
	args := m.Called(ctx, tx, code, userID)
	record, _ := args.Get(0).(*registration.RegistrationCode)
	return record, args.Error(1)
}

// MockRepositoryManager implements registration.RepositoryManager. RunInTx
// invokes the unit of work with a zero transaction and propagates its
// error, so handler transaction bodies run for real against the mocks.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() registration.Users {
	args := m.Called()
	users, _ := args.Get(0).(registration.Users)
	return users
}

func (m *MockRepositoryManager) RegistrationProfiles() registration.RegistrationProfiles {
	args := m.Called()
	profiles, _ := args.Get(0).(registration.RegistrationProfiles)
	return profiles
}

func (m *MockRepositoryManager) RegistrationCodes() registration.RegistrationCodes {
	args := m.Called()
	codes, _ := args.Get(0).(registration.RegistrationCodes)
	return codes
}

// capturingSink records the events handlers emit.
type capturingSink struct {
	events []registration.Event
}

func (c *capturingSink) Record(ctx context.Context, evt registration.Event) error {
	c.events = append(c.events, evt)
	return nil
}

// capturingNotifier records activation email dispatches.
type capturingNotifier struct {
	sent []sentActivation
	err  error
}

type sentActivation struct {
	email string
	key   string
}

func (c *capturingNotifier) SendActivationEmail(_ context.Context, user *registration.User, profile *registration.RegistrationProfile) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, sentActivation{email: user.Email, key: profile.ActivationKey})
	return nil
}

// stubSession implements registration.SessionContext
type stubSession struct {
	cookieWorked  bool
	expireOnClose bool
}

func (s *stubSession) TestCookieWorked() bool {
	return s.cookieWorked
}

func (s *stubSession) SetExpiryOnClose() {
	s.expireOnClose = true
}

// testIdentity implements registration.Identity
type testIdentity struct {
	id       string
	username string
	email    string
	active   bool
}

func (t testIdentity) ID() string       { return t.id }
func (t testIdentity) Username() string { return t.username }
func (t testIdentity) Email() string    { return t.email }
func (t testIdentity) Active() bool     { return t.active }

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Error(string, ...any) {}
