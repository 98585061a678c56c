package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	t.Run("string value", func(t *testing.T) {
		t.Setenv("TEST_ENV_STR", "hello")
		v, err := Getenv(GetenvString, "TEST_ENV_STR", true, "")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("int value", func(t *testing.T) {
		t.Setenv("TEST_ENV_INT", "42")
		v, err := Getenv(GetenvInt, "TEST_ENV_INT", true, 0)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("bool value", func(t *testing.T) {
		t.Setenv("TEST_ENV_BOOL", "true")
		v, err := Getenv(GetenvBool, "TEST_ENV_BOOL", true, false)
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("unset optional returns fallback", func(t *testing.T) {
		v, err := Getenv(GetenvInt, "TEST_ENV_UNSET_OPT", false, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("unset required errors", func(t *testing.T) {
		_, err := Getenv(GetenvString, "TEST_ENV_UNSET_REQ", true, "")
		assert.Error(t, err)
	})

	t.Run("empty counts as unset", func(t *testing.T) {
		t.Setenv("TEST_ENV_EMPTY", "")
		v, err := Getenv(GetenvString, "TEST_ENV_EMPTY", false, "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", v)
	})

	t.Run("parse failure errors", func(t *testing.T) {
		t.Setenv("TEST_ENV_BAD_INT", "not-a-number")
		_, err := Getenv(GetenvInt, "TEST_ENV_BAD_INT", true, 0)
		assert.Error(t, err)
	})
}

func TestMustGetenv(t *testing.T) {
	t.Setenv("TEST_ENV_MUST", "9")
	assert.Equal(t, 9, MustGetenv(GetenvInt, "TEST_ENV_MUST", true, 0))

	assert.Panics(t, func() {
		MustGetenv(GetenvString, "TEST_ENV_MUST_MISSING", true, "")
	})
}
