package status

import "errors"

var (
	ErrInvalidPhone      = errors.New("queue: invalid phone number format")
	ErrAlreadyWaiting    = errors.New("queue: phone already has a waiting entry")
	ErrEntryNotFound     = errors.New("queue: entry not found")
	ErrInvalidAction     = errors.New("queue: invalid action")
	ErrInvalidTransition = errors.New("queue: transition not allowed from current status")

	ErrMissingFields      = errors.New("account: required field missing")
	ErrUsernameLength     = errors.New("account: username length out of range")
	ErrNameLength         = errors.New("account: name length out of range")
	ErrPasswordTooShort   = errors.New("account: password shorter than minimum length")
	ErrInvalidEmail       = errors.New("account: invalid email format")
	ErrUsernameTaken      = errors.New("account: username already exists")
	ErrUserNotFound       = errors.New("account: user not found")
	ErrInvalidCredentials = errors.New("account: invalid username or password")

	ErrEmailSend = errors.New("email: provider send failed")
)
