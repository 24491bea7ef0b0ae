package gatt

import "fmt"

// ErrCode is the HCI/GAP-layer error taxonomy from the stack's design
// (spec.md §7). GATT-layer failures are instead reported as raw ATT
// error codes (see att.go) since they cross the wire to the peer.
type ErrCode int

const (
	ErrInvalidParameters ErrCode = iota + 1
	ErrBufferOverflow
	ErrCommandTimeout
	ErrUnknownPacketType
	ErrUnsupportedGroup
	ErrUnknownCommand
	ErrInvalidOpcode
	ErrInvalidEvent
	ErrInternal
	ErrBusy
	ErrUnsupportedVersion
	ErrMemoryAllocationFailed
)

func (c ErrCode) String() string {
	switch c {
	case ErrInvalidParameters:
		return "InvalidParameters"
	case ErrBufferOverflow:
		return "BufferOverflow"
	case ErrCommandTimeout:
		return "CommandTimeout"
	case ErrUnknownPacketType:
		return "UnknownPacketType"
	case ErrUnsupportedGroup:
		return "UnsupportedGroup"
	case ErrUnknownCommand:
		return "UnknownCommand"
	case ErrInvalidOpcode:
		return "InvalidOpcode"
	case ErrInvalidEvent:
		return "InvalidEvent"
	case ErrInternal:
		return "Internal"
	case ErrBusy:
		return "Busy"
	case ErrUnsupportedVersion:
		return "UnsupportedVersion"
	case ErrMemoryAllocationFailed:
		return "MemoryAllocationFailed"
	default:
		return fmt.Sprintf("ErrCode(%d)", int(c))
	}
}

// Error is the error type returned by the HCI engine and the layers
// built on top of it. It carries a taxonomy code plus an optional
// wrapped cause, so callers can use errors.Is/errors.As idiomatically
// while still getting a stable code for programmatic handling.
type Error struct {
	Code  ErrCode
	Msg   string
	cause error
}

func newErr(code ErrCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func wrapErr(code ErrCode, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("gatt: %s: %s: %v", e.Code, e.Msg, e.cause)
	}
	return fmt.Sprintf("gatt: %s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same code, so
// callers can do errors.Is(err, &Error{Code: ErrCommandTimeout}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HciError is returned by the GAP layer when an underlying HCI
// operation fails; it wraps the original *Error rather than discarding
// the cause.
type HciError struct {
	cause *Error
}

func (e *HciError) Error() string { return fmt.Sprintf("gap: hci error: %v", e.cause) }
func (e *HciError) Unwrap() error { return e.cause }

func hciErr(cause *Error) *HciError { return &HciError{cause: cause} }

// ATT-defined error codes (spec.md §7, GATT layer). These are the raw
// wire values carried in an ATT Error Response (att.go attErrorResp)
// and also returned by local database operations in gattdb.go.
type AttErrCode = byte

const (
	AttErrInvalidHandle       AttErrCode = attEcodeInvalidHandle
	AttErrReadNotPermitted    AttErrCode = attEcodeReadNotPerm
	AttErrWriteNotPermitted   AttErrCode = attEcodeWriteNotPerm
	AttErrInvalidPDU          AttErrCode = attEcodeInvalidPDU
	AttErrInsufficientAuth    AttErrCode = attEcodeAuthentication
	AttErrRequestNotSupported AttErrCode = attEcodeReqNotSupp
	AttErrInvalidOffset       AttErrCode = attEcodeInvalidOffset
	AttErrAttributeNotFound   AttErrCode = attEcodeAttrNotFound
	AttErrInsufficientResrc   AttErrCode = attEcodeInsuffResources
	AttErrInvalidValueLength  AttErrCode = attEcodeInvalAttrValueLen
)

// AttError reports a local GATT-database failure in terms of the ATT
// error code it would map to on the wire.
type AttError struct {
	Code AttErrCode
	Msg  string
}

func (e *AttError) Error() string { return fmt.Sprintf("gatt: att error 0x%02X: %s", e.Code, e.Msg) }

func newAttError(code AttErrCode, msg string) *AttError { return &AttError{Code: code, Msg: msg} }
