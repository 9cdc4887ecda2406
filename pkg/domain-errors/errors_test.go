package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "submission not found")
	require.Error(t, err)
	assert.Equal(t, "submission not found", err.Error())
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store failure")

	assert.True(t, HasCode(err, CodeInternal))
	assert.ErrorIs(t, err, cause)
}

func TestHasCode_WalksWrappedChain(t *testing.T) {
	inner := New(CodeConflict, "version mismatch")
	outer := fmt.Errorf("amend submission: %w", inner)

	assert.True(t, HasCode(outer, CodeConflict))
	assert.False(t, HasCode(outer, CodeNotFound))
	assert.False(t, HasCode(nil, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad title")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", New(CodeForbidden, "not yours"))
	assert.Equal(t, CodeForbidden, CodeOf(wrapped))
}
