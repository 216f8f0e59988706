package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "identifier is malformed")
	require.Error(t, err)
	assert.Equal(t, "identifier is malformed", err.Error())
	assert.True(t, HasCode(err, CodeInvalidInput))
	assert.False(t, HasCode(err, CodeInternal))
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "no source could decode")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source could decode")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, HasCode(err, CodeUnavailable))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "should vanish"))
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	inner := New(CodeNotFound, "cache entry missing")
	outer := fmt.Errorf("decode: %w", inner)

	assert.True(t, HasCode(outer, CodeNotFound))
	assert.False(t, HasCode(outer, CodeConflict))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, Code(""), GetCode(nil))
	assert.Equal(t, CodeInternal, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeValidation, GetCode(New(CodeValidation, "checksum mismatch")))

	wrapped := Wrap(New(CodeNotFound, "inner"), CodeUnavailable, "outer")
	assert.Equal(t, CodeUnavailable, GetCode(wrapped))
}
