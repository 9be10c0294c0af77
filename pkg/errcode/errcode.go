package errcode

import "fmt"

// Error represents a client-facing error. Code matches the string codes the
// B0 backend returns in its {error: {code, message}} envelope; client-local
// conditions (connection, send timeout) reuse the same shape.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %s, message: %s", e.Code, e.Message)
}

// New creates a new error with code and message
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an error with additional context
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{
		Code:    e.Code,
		Message: fmt.Sprintf("%s: %v", e.Message, err),
	}
}

// WithMessage returns a copy of the error carrying a server-supplied message.
func (e *Error) WithMessage(message string) *Error {
	if message == "" {
		return e
	}
	return &Error{Code: e.Code, Message: message}
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Client-local error codes
var (
	ErrConnection   = New("CONNECTION_ERROR", "cannot connect to server")
	ErrSocket       = New("SOCKET_ERROR", "unexpected socket error")
	ErrInit         = New("INIT_ERROR", "socket initialization failed")
	ErrTokenMissing = New("TOKEN_MISSING", "no auth token, sign in required")
	ErrTokenExpired = New("TOKEN_EXPIRED", "auth token expired")
	ErrNotConnected = New("NOT_CONNECTED", "not connected")
	ErrNoIdentity   = New("NO_IDENTITY", "current user unknown")
	ErrSendTimeout  = New("SEND_TIMEOUT", "message send timed out")
)

// Backend error codes (string codes returned by the B0 API)
var (
	ErrUnauthorized       = New("UNAUTHORIZED", "unauthorized")
	ErrForbidden          = New("FORBIDDEN", "forbidden")
	ErrNotFound           = New("NOT_FOUND", "not found")
	ErrValidation         = New("VALIDATION_ERROR", "invalid parameter")
	ErrInternalServer     = New("INTERNAL_SERVER_ERROR", "internal server error")
	ErrInsufficientPoints = New("INSUFFICIENT_POINTS", "not enough points")
	ErrRoomNotFound       = New("ROOM_NOT_FOUND", "room not found")
	ErrNotRoomMember      = New("NOT_ROOM_MEMBER", "not a member of this room")
	ErrDMNotActive        = New("DM_NOT_ACTIVE", "dm conversation is not active")
)
