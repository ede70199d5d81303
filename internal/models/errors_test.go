package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf_Sentinels(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrInvalidName, CodeInvalidName},
		{ErrDuplicateName, CodeDuplicateName},
		{ErrNotFound, CodeNotFound},
		{ErrIO, CodeIO},
		{ErrBackup, CodeBackup},
		{ErrBusy, CodeBusy},
		{ErrValidation, CodeValidation},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, CodeOf(tc.err))
	}
}

func TestCodeOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("%w: profile %q", ErrNotFound, "Ghost")
	assert.Equal(t, CodeNotFound, CodeOf(err))

	err = fmt.Errorf("outer: %w", fmt.Errorf("%w: inner", ErrBusy))
	assert.Equal(t, CodeBusy, CodeOf(err))
}

func TestCodeOf_UnknownError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("something else")))
}

func TestEnvelope_Ok(t *testing.T) {
	env := Ok(map[string]int{"a": 1})
	assert.True(t, env.Success)
	assert.NotNil(t, env.Data)
	assert.Nil(t, env.Error)
}

func TestEnvelope_Fail(t *testing.T) {
	env := Fail(fmt.Errorf("%w: %q", ErrInvalidName, "///"))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeInvalidName, env.Error.Code)
	assert.Contains(t, env.Error.Message, "invalid profile name")
}

func TestBackupSettings_Conversions(t *testing.T) {
	s := BackupSettings{BackupIntervalMs: 300000, MaxBackupAgeMs: 86400000}
	assert.Equal(t, "5m0s", s.Interval().String())
	assert.Equal(t, "24h0m0s", s.MaxAge().String())
}
