package authctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle(t *testing.T) {
	ac := New()
	assert.Equal(t, Unresolved, ac.State())

	_, ok := ac.TenantID()
	assert.False(t, ok, "no tenant before resolution")
	_, ok = ac.Subject()
	assert.False(t, ok, "no subject before authentication")
	assert.False(t, ac.IsAdmin())

	require.NoError(t, ac.ResolveTenant("acme"))
	assert.Equal(t, TenantResolved, ac.State())

	tenantID, ok := ac.TenantID()
	assert.True(t, ok)
	assert.Equal(t, "acme", tenantID)

	require.NoError(t, ac.Authenticate("acme_user", "member", false))
	assert.Equal(t, Authenticated, ac.State())

	subject, ok := ac.Subject()
	assert.True(t, ok)
	assert.Equal(t, "acme_user", subject)
	assert.Equal(t, "member", ac.Role())
	assert.False(t, ac.IsAdmin())
}

func TestResolveTenantEmptyMeansNoTenant(t *testing.T) {
	ac := New()
	require.NoError(t, ac.ResolveTenant(""))

	_, ok := ac.TenantID()
	assert.False(t, ok)

	require.NoError(t, ac.Authenticate("admin", "admin", true))
	assert.True(t, ac.IsAdmin())
}

func TestTransitionsAreOneDirectional(t *testing.T) {
	t.Run("resolve twice", func(t *testing.T) {
		ac := New()
		require.NoError(t, ac.ResolveTenant("acme"))
		assert.ErrorIs(t, ac.ResolveTenant("globex"), ErrInvalidTransition)

		tenantID, _ := ac.TenantID()
		assert.Equal(t, "acme", tenantID, "first resolution must stand")
	})

	t.Run("authenticate before resolve", func(t *testing.T) {
		ac := New()
		assert.ErrorIs(t, ac.Authenticate("admin", "admin", true), ErrInvalidTransition)
		assert.False(t, ac.IsAdmin())
	})

	t.Run("authenticate twice", func(t *testing.T) {
		ac := New()
		require.NoError(t, ac.ResolveTenant("acme"))
		require.NoError(t, ac.Authenticate("acme_user", "member", false))
		assert.ErrorIs(t, ac.Authenticate("mallory", "admin", true), ErrInvalidTransition)

		subject, _ := ac.Subject()
		assert.Equal(t, "acme_user", subject)
		assert.False(t, ac.IsAdmin())
	})

	t.Run("tenant locked after authentication", func(t *testing.T) {
		ac := New()
		require.NoError(t, ac.ResolveTenant("acme"))
		require.NoError(t, ac.Authenticate("acme_user", "member", false))
		assert.Error(t, ac.ResolveTenant("globex"))

		tenantID, _ := ac.TenantID()
		assert.Equal(t, "acme", tenantID)
	})
}
