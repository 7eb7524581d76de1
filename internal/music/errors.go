package music

import "errors"

// UserError is an error whose message is meant for the user who issued
// the command.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

var _ error = (*UserError)(nil)

// ErrPanelExpired is returned for presses on unknown or expired panels.
// They are acknowledged without a reply.
var ErrPanelExpired = errors.New("panel expired")

var (
	errNoGuild        = &UserError{Message: msgNoGuild}
	errNothingPlaying = &UserError{Message: msgNothingPlaying}
	errNotConnected   = &UserError{Message: msgNotConnected}
	errNoPrevious     = &UserError{Message: msgNoPrevious}
	errJoinFirst      = &UserError{Message: msgJoinFirst}
	errJoinFailed     = &UserError{Message: msgJoinFailed}
	errFetchFailed    = &UserError{Message: msgFetchFailed}
	errTooLarge       = &UserError{Message: msgTooLarge}
	errNotYours       = &UserError{Message: msgNotYours}
)
