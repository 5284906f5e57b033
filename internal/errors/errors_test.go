package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = stderrors.New("sentinel")

func TestWithCode_KeepsChain(t *testing.T) {
	err := WithCode(CodeConfigInvalid, fmt.Errorf("roles: %w", errSentinel))

	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.True(t, stderrors.Is(err, errSentinel))
	assert.Equal(t, "roles: sentinel", err.Error())
	assert.Nil(t, WithCode(CodeInputError, nil))
}

func TestWithCode_Reclassifies(t *testing.T) {
	err := WithCode(CodeInternalError, InputError("read failed", errSentinel))
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "read failed: sentinel", err.Error())
}

func TestWrap_PreservesCode(t *testing.T) {
	wrapped := Wrap(ConfigInvalid("bad threshold"), "configuration validation failed")
	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "configuration validation failed: bad threshold", wrapped.Error())

	plain := Wrapf(errSentinel, "step %d", 2)
	assert.Equal(t, CodeInternalError, GetCode(plain))
	assert.True(t, stderrors.Is(plain, errSentinel))
	assert.Nil(t, Wrap(nil, "x"))
}

func TestCodesAndExit(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(errSentinel))
	assert.False(t, IsAppError(errSentinel))
	assert.True(t, IsAppError(fmt.Errorf("outer: %w", OutputError("disk full", nil))))
	assert.Equal(t, CodeOutputError, GetCode(OutputError("disk full", nil)))
	assert.Equal(t, CodeConfigInvalid, GetCode(ConfigInvalidf("n=%d", 1)))

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(InternalError("boom")))
	assert.Equal(t, 1, ExitCode(errSentinel))
}
