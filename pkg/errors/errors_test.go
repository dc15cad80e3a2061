package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrNotInitialized, "steamcmd not found")
	assert.Equal(t, "[NOT_INITIALIZED] steamcmd not found", err.Error())

	wrapped := Wrap(fmt.Errorf("permission denied"), ErrConfigLoad, "cannot read config")
	assert.Equal(t, "[CONFIG_LOAD] cannot read config: permission denied", wrapped.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal, "x"))
	assert.Nil(t, Wrapf(nil, ErrInternal, "x %d", 1))
}

func TestUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	err := Wrap(inner, ErrCopy, "outer")
	assert.Equal(t, inner, err.Unwrap())
}

func TestIsErrorCode(t *testing.T) {
	err := Newf(ErrProcessExit, "exited with %d", 3).WithDetail("code", 3)
	assert.True(t, IsErrorCode(err, ErrProcessExit))
	assert.False(t, IsErrorCode(err, ErrProcessSpawn))
	assert.False(t, IsErrorCode(fmt.Errorf("plain"), ErrProcessExit))

	assert.Equal(t, ErrProcessExit, GetErrorCode(err))
	assert.Equal(t, ErrUnknown, GetErrorCode(fmt.Errorf("plain")))
	assert.Equal(t, 3, err.Details["code"])
}

func TestIsErrorCodeThroughWrapping(t *testing.T) {
	inner := New(ErrWebAPIKeyMissing, "empty key")
	outer := fmt.Errorf("loading config: %w", inner)
	assert.True(t, IsErrorCode(outer, ErrWebAPIKeyMissing))
}
