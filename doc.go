// Package registration provides a user sign-up and activation workflow plus
// an email-based credential resolver, as a library for host web applications.
//
// Registration workflow:
//   - RegisterAccountHandler creates an inactive User together with a
//     RegistrationProfile holding a fresh activation key, in a single
//     transaction. When the workflow is configured to require a signup code,
//     the code is claimed with a compare-and-set update inside the same
//     transaction, so a code is consumed by at most one account and a failed
//     claim leaves no partial state behind.
//   - ActivateAccountHandler consumes an activation key within the configured
//     activation window and flips the account active. Consumed or expired
//     keys are rejected.
//
// Forms:
//   - RegistrationForm validates the raw sign-up record. Variant behavior
//     (unique email, banned domains, terms of service, email re-entry) is
//     selected through FormOption values rather than a type hierarchy, and
//     failures accumulate as validation.Errors keyed by field.
//   - AuthenticationForm validates credentials against a Backend, distinguishing
//     unknown/incorrect credentials from inactive accounts, and applies the
//     expire-on-close session side effect when persistence is declined.
//
// Event sinks:
//   - EventSink is a best-effort emitter used by the workflow handlers to
//     publish user.registered and user.activated events. Sink errors are
//     logged, never returned, so downstream subscribers cannot block
//     registration.
package registration
