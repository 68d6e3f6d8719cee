package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("manager")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	for _, raw := range []string{"", "admin", "Manager", " manager", "employee ", "\temployee"} {
		_, err := ParseRole(raw)
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
}

func TestPrincipalIsManager(t *testing.T) {
	assert.True(t, Principal{Role: RoleManager}.IsManager())
	assert.False(t, Principal{Role: RoleEmployee}.IsManager())
}
