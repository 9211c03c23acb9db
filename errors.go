package registration

import "errors"

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password can not be an empty string")

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// ErrRegistrationClosed is returned when the host has closed sign-ups
var ErrRegistrationClosed = errors.New("registration is currently closed")

// ErrInvalidSignupCode is returned when a signup code does not exist or
// was already consumed by another account
var ErrInvalidSignupCode = errors.New("invalid or already used signup code")

// ErrSignupCodeRequired is returned when the workflow requires a code and
// none was supplied
var ErrSignupCodeRequired = errors.New("a signup code is required to register")

// ErrActivationKeyInvalid reports an unknown activation key. Hosts can
// use it when translating an ActivateAccountResponse into an error
var ErrActivationKeyInvalid = errors.New("activation key not found")

// ErrActivationKeyExpired reports a key whose activation window elapsed
var ErrActivationKeyExpired = errors.New("activation key has expired")

// ErrActivationKeyUsed reports a key that was already consumed
var ErrActivationKeyUsed = errors.New("activation key already used")

// ErrUsernameSpaceExhausted is returned when the generator can not find a
// free username within its search bounds
var ErrUsernameSpaceExhausted = errors.New("unable to generate a unique username")
