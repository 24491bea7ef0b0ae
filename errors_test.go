package gatt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	base := errors.New("boom")
	err := wrapErr(ErrCommandTimeout, "no response", base)

	require.True(t, errors.Is(err, &Error{Code: ErrCommandTimeout}))
	require.False(t, errors.Is(err, &Error{Code: ErrInternal}))
	require.ErrorIs(t, err, base)
}

func TestHciError_UnwrapsCause(t *testing.T) {
	cause := newErr(ErrCommandTimeout, "timed out")
	err := hciErr(cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "timed out")
}

func TestAttError_Error(t *testing.T) {
	err := newAttError(AttErrInvalidHandle, "no such handle")
	require.Contains(t, err.Error(), "no such handle")
	require.Equal(t, AttErrInvalidHandle, err.Code)
}

func TestErrCode_String(t *testing.T) {
	require.Equal(t, "CommandTimeout", ErrCommandTimeout.String())
	require.Contains(t, ErrCode(999).String(), "999")
}
