// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "profile_not_found",
			code:    errors.ErrProfileNotFound,
			message: "profile windows not found",
			wantStr: "[PROFILE_NOT_FOUND] profile windows not found",
		},
		{
			name:    "invalid_input",
			code:    errors.ErrInvalidInput,
			message: "invalid merge strategy",
			wantStr: "[INVALID_INPUT] invalid merge strategy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrProfileCycle, "import cycle: %s", "a -> b -> a")
	assert.Equal(t, "import cycle: a -> b -> a", err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrInternal, "internal error")
		require.NotNil(t, err)
		assert.Equal(t, errors.ErrInternal, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[INTERNAL] internal error: base error", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrProfileNotFound, "not found").
		WithDetail("profile", "base").
		WithDetail("dir", "/src/profiles")

	details := errors.GetErrorDetails(err)
	assert.Equal(t, "base", details["profile"])
	assert.Equal(t, "/src/profiles", details["dir"])
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", errors.New(errors.ErrProfileCycle, "cycle"), errors.ErrProfileCycle, true},
		{"different_code", errors.New(errors.ErrProfileCycle, "cycle"), errors.ErrProfileInvalid, false},
		{"standard_error", stderrors.New("standard error"), errors.ErrNotFound, false},
		{"nil_error", nil, errors.ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrHookFailed, errors.GetErrorCode(errors.New(errors.ErrHookFailed, "x")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("standard error")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	fileErr := errors.Wrap(rootCause, errors.ErrFileAccess, "cannot read profile")
	profileErr := errors.Wrap(fileErr, errors.ErrProfileInvalid, "failed to load profile")

	t.Run("top_level_has_correct_code", func(t *testing.T) {
		assert.True(t, errors.IsErrorCode(profileErr, errors.ErrProfileInvalid))
	})

	t.Run("is_matches_by_code", func(t *testing.T) {
		assert.True(t, stderrors.Is(profileErr, errors.New(errors.ErrFileAccess, "")))
	})

	t.Run("can_find_root_cause", func(t *testing.T) {
		assert.True(t, stderrors.Is(profileErr, rootCause))
	})
}
