package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotAllowed           = errors.New("not allowed")
	ErrAlreadyFlagged       = errors.New("you have already flagged this content")
	ErrPendingRequestExists = errors.New("you already have a pending channel request")
	ErrReplyTooDeep         = errors.New("replies can only be nested one level deep")
	ErrAgentNotAuthorized   = errors.New("agent not authorized for this action")
	ErrRequestNotPending    = errors.New("request is no longer pending")
)

// BannedError rejects content creation while a ban is in force. The message
// carries the expiry and reason so the user sees both.
type BannedError struct {
	Until  *time.Time
	Reason string
}

func (e *BannedError) Error() string {
	if e.Until == nil {
		return fmt.Sprintf("you are banned permanently. Reason: %s", e.Reason)
	}
	return fmt.Sprintf("you are banned until %s. Reason: %s",
		e.Until.Format(time.RFC1123), e.Reason)
}

// ValidationError reports a superficially invalid input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }
