// Package errors defines BridgeOS's typed error codes (spec §7) and maps
// low-level Postgres constraint violations onto them, so callers never
// branch on driver-specific error strings.
package errors

import (
	"errors"
	"fmt"
)

// Code enumerates the invariant/quota/transient/programming error kinds of
// spec §7. Handlers switch on Code, never on the underlying message.
type Code string

const (
	CodeSlotOccupied           Code = "slot_occupied"
	CodeWorkerAlreadyConnected Code = "worker_already_connected"
	CodeManagerGone            Code = "manager_gone"
	CodeWorkerGone             Code = "worker_gone"
	CodeInvalidSlot            Code = "invalid_slot"
	CodeCodeCollision          Code = "code_collision"
	CodeNotConnected           Code = "not_connected"
	CodeWrongSlot              Code = "wrong_slot"
	CodeForbidden              Code = "forbidden"
	CodeAlreadyDisconnected    Code = "already_disconnected"
	CodeAlreadyCompleted       Code = "already_completed"
	CodeLimitReached           Code = "limit_reached"
	CodeTranslationFailed      Code = "translation_failed"
	CodeTransportFailed        Code = "transport_failed"
	CodePoolExhausted          Code = "pool_exhausted"
	CodeNotFound               Code = "not_found"
	CodeValidation             Code = "validation"
	CodeInternal               Code = "internal"
)

// userFacing holds the short copy a chat front-end may surface directly
// to a manager/worker, per §7: NEVER the raw Msg, which may carry
// driver-level detail. Codes with no entry fall back to CodeInternal's.
var userFacing = map[Code]string{
	CodeSlotOccupied:           "that bot slot is already taken",
	CodeWorkerAlreadyConnected: "this worker already has an active connection",
	CodeManagerGone:            "that manager account no longer exists",
	CodeWorkerGone:             "that worker account no longer exists",
	CodeInvalidSlot:            "that bot slot isn't valid",
	CodeCodeCollision:          "couldn't generate a unique invite code, try again",
	CodeNotConnected:           "there's no active connection right now",
	CodeWrongSlot:              "that came in on the wrong bot",
	CodeForbidden:              "you can't do that",
	CodeAlreadyDisconnected:    "that connection is already closed",
	CodeAlreadyCompleted:       "that task is already marked done",
	CodeLimitReached:           "the free message limit has been reached",
	CodeTranslationFailed:      "translation failed, please try again",
	CodeTransportFailed:        "delivery failed, please try again",
	CodePoolExhausted:          "the service is busy, please try again",
	CodeNotFound:               "not found",
	CodeValidation:             "that request wasn't valid",
	CodeInternal:               "something went wrong",
}

// Error is BridgeOS's error wrapper: a Code a caller can switch on, Op
// naming the failing operation (e.g. "connection.Bind"), Msg for logs
// only, and an optional Cause for errors.Unwrap chains.
type Error struct {
	Code  Code
	Op    string
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Msg != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Op, e.Msg)
	case e.Op != "":
		return fmt.Sprintf("[%s] %s", e.Code, e.Op)
	case e.Msg != "":
		return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
	default:
		return fmt.Sprintf("[%s]", e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// UserFacing returns the short copy safe to show a chat-platform user
// for e.Code, falling back to the generic internal-error copy.
func (e *Error) UserFacing() string {
	if e == nil {
		return userFacing[CodeInternal]
	}
	if msg, ok := userFacing[e.Code]; ok {
		return msg
	}
	return userFacing[CodeInternal]
}

func New(code Code, op, msg string) *Error {
	return &Error{Code: code, Op: op, Msg: msg}
}

// Wrap attaches code/op to an existing error as its Cause. Returns nil
// for a nil cause so call sites can write `return Wrap(Code, op, err)`
// unconditionally.
func Wrap(code Code, op string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Msg: cause.Error(), Cause: cause}
}

// Is reports whether err (or anything it wraps) carries code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf extracts the Code, or "" if err isn't a *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
