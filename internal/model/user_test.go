package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrincipalHasRole(t *testing.T) {
	t.Parallel()

	p := Principal{Roles: []string{"admin", "user"}}

	require.True(t, p.HasRole("admin"))
	require.True(t, p.HasRole("Admin"))
	require.False(t, p.HasRole("auditor"))
	require.False(t, Principal{}.HasRole("admin"))
}
