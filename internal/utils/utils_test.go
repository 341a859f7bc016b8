package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-jwt-server/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestPointerHelpers(t *testing.T) {
	t.Run("value of nil is zero", func(t *testing.T) {
		var s *string
		require.Equal(t, "", utils.Value(s))
	})

	t.Run("ptr round trip", func(t *testing.T) {
		require.Equal(t, 42, utils.Value(utils.Ptr(42)))
	})

	t.Run("ptr if set", func(t *testing.T) {
		require.Nil(t, utils.PtrIfSet(""))
		require.Equal(t, "token", *utils.PtrIfSet("token"))
	})
}

func TestToAnyStringSlice(t *testing.T) {
	require.Equal(t, []string{"USER", "ADMIN"}, utils.ToAnyStringSlice([]any{"USER", 7, "ADMIN"}))
	require.Equal(t, []string{"USER"}, utils.ToAnyStringSlice([]string{"USER"}))
	require.Nil(t, utils.ToAnyStringSlice("USER"))
}
