package registration

// DefaultUsernameMaxLength matches the column width the username slug is
// truncated against.
const DefaultUsernameMaxLength = 30

// DefaultActivationDays is the activation window when none is configured.
const DefaultActivationDays = 7

// WorkflowConfig is the concrete Config used by the registration
// workflow. Hosts pass it explicitly; nothing is read from ambient
// process settings.
type WorkflowConfig struct {
	ActivationDays    int    `json:"activation_days"`
	RegistrationOpen  bool   `json:"registration_open"`
	RequireSignupCode bool   `json:"require_signup_code"`
	UsernameMaxLength int    `json:"username_max_length"`
	SiteName          string `json:"site_name"`
	SiteDomain        string `json:"site_domain"`
}

// NewWorkflowConfig returns a config with registration open and defaults
// applied.
func NewWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		ActivationDays:    DefaultActivationDays,
		RegistrationOpen:  true,
		UsernameMaxLength: DefaultUsernameMaxLength,
	}
}

func (c WorkflowConfig) GetActivationDays() int {
	if c.ActivationDays <= 0 {
		return DefaultActivationDays
	}
	return c.ActivationDays
}

func (c WorkflowConfig) GetRegistrationOpen() bool {
	return c.RegistrationOpen
}

func (c WorkflowConfig) GetRequireSignupCode() bool {
	return c.RequireSignupCode
}

func (c WorkflowConfig) GetUsernameMaxLength() int {
	if c.UsernameMaxLength <= 0 {
		return DefaultUsernameMaxLength
	}
	return c.UsernameMaxLength
}

func (c WorkflowConfig) GetSiteName() string {
	return c.SiteName
}

func (c WorkflowConfig) GetSiteDomain() string {
	return c.SiteDomain
}

var _ Config = WorkflowConfig{}
