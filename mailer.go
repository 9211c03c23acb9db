package registration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/template/django/v3"
)

// Default template names the mailer renders, resolved against the engine
// the host configures.
const (
	ActivationEmailSubjectTemplate = "activation_email_subject"
	ActivationEmailBodyTemplate    = "activation_email"
)

// ActivationNotifier dispatches the activation email for a freshly
// registered account.
type ActivationNotifier interface {
	SendActivationEmail(ctx context.Context, user *User, profile *RegistrationProfile) error
}

// TemplateRenderer matches the fiber view engine contract so any of the
// gofiber template engines can render the activation email.
type TemplateRenderer interface {
	Render(w io.Writer, name string, binding any, layouts ...string) error
}

// NewEmailTemplateEngine loads django templates with a .txt extension
// from dir.
func NewEmailTemplateEngine(dir string) (*django.Engine, error) {
	engine := django.New(dir, ".txt")
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return engine, nil
}

// ActivationMailer renders the subject and body templates and hands the
// result to a Mailer. The binding exposes activation_key,
// expiration_days, site_name and site_domain.
type ActivationMailer struct {
	engine          TemplateRenderer
	mailer          Mailer
	config          Config
	logger          Logger
	SubjectTemplate string
	BodyTemplate    string
}

var _ ActivationNotifier = (*ActivationMailer)(nil)

func NewActivationMailer(engine TemplateRenderer, mailer Mailer, config Config) *ActivationMailer {
	if config == nil {
		config = NewWorkflowConfig()
	}

	return &ActivationMailer{
		engine:          engine,
		mailer:          mailer,
		config:          config,
		logger:          defLogger{},
		SubjectTemplate: ActivationEmailSubjectTemplate,
		BodyTemplate:    ActivationEmailBodyTemplate,
	}
}

func (m *ActivationMailer) WithLogger(logger Logger) *ActivationMailer {
	m.logger = logger
	return m
}

func (m *ActivationMailer) SendActivationEmail(ctx context.Context, user *User, profile *RegistrationProfile) error {
	binding := map[string]any{
		"activation_key":  profile.ActivationKey,
		"expiration_days": m.config.GetActivationDays(),
		"site_name":       m.config.GetSiteName(),
		"site_domain":     m.config.GetSiteDomain(),
	}

	var subject bytes.Buffer
	if err := m.engine.Render(&subject, m.SubjectTemplate, binding); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := m.engine.Render(&body, m.BodyTemplate, binding); err != nil {
		return err
	}

	// subjects must be a single line regardless of template formatting
	subjectLine := strings.Join(strings.Fields(subject.String()), " ")

	return m.mailer.Send(ctx, user.Email, subjectLine, body.String())
}

// logActivationNotifier is the default notifier: it prints the activation
// link so development setups work without a configured mailer.
type logActivationNotifier struct{}

func (n *logActivationNotifier) SendActivationEmail(_ context.Context, user *User, profile *RegistrationProfile) error {
	fmt.Println("====== SENDING ACTIVATION EMAIL =======")
	fmt.Printf("to: %s\n", user.Email)
	fmt.Printf("link: /activate/%s\n", profile.ActivationKey)
	return nil
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, to, subject, body string) error

// Send implements Mailer.
func (f MailerFunc) Send(ctx context.Context, to, subject, body string) error {
	if f == nil {
		return nil
	}
	return f(ctx, to, subject, body)
}
