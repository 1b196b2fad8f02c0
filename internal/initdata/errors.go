package initdata

import "errors"

// Reason is the closed set of init data rejection causes
type Reason string

const (
	ReasonEmpty       Reason = "EMPTY_INITDATA"
	ReasonBadFormat   Reason = "BAD_INITDATA_FORMAT"
	ReasonNoHash      Reason = "NO_HASH"
	ReasonBadHash     Reason = "BAD_HASH"
	ReasonNoUser      Reason = "NO_USER_IN_INITDATA"
	ReasonBadUserJSON Reason = "BAD_USER_JSON"
	ReasonNoUserID    Reason = "NO_USER_ID"
)

// Error is returned by Verify for every rejected payload
type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return "initdata: " + string(e.Reason)
}

// Is reports whether target is an *Error with the same reason
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

var (
	ErrEmpty       = &Error{Reason: ReasonEmpty}
	ErrBadFormat   = &Error{Reason: ReasonBadFormat}
	ErrNoHash      = &Error{Reason: ReasonNoHash}
	ErrBadHash     = &Error{Reason: ReasonBadHash}
	ErrNoUser      = &Error{Reason: ReasonNoUser}
	ErrBadUserJSON = &Error{Reason: ReasonBadUserJSON}
	ErrNoUserID    = &Error{Reason: ReasonNoUserID}
)

// ReasonOf extracts the rejection reason from err
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return "", false
}
