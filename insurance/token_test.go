package insurance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/insurance-engine/insurance"
)

func TestTokenIssuer(t *testing.T) {
	issuer := insurance.NewTokenIssuer("secret-a")

	token, err := issuer.Issue("order-1", testNow)
	require.NoError(t, err)

	assert.NoError(t, issuer.Verify(token, "order-1"))
	assert.ErrorIs(t, issuer.Verify(token, "order-2"), insurance.ErrInvalidAccessToken, "token of another order")
	assert.ErrorIs(t, insurance.NewTokenIssuer("secret-b").Verify(token, "order-1"), insurance.ErrInvalidAccessToken, "other secret")
	assert.ErrorIs(t, issuer.Verify(token+"x", "order-1"), insurance.ErrInvalidAccessToken, "tampered")

	again, err := issuer.Issue("order-1", testNow)
	require.NoError(t, err)
	assert.NotEqual(t, token, again)
}

func TestTokenIssuer_CheckAccessComparesStoredToken(t *testing.T) {
	// GIVEN: Two valid tokens for the same order, only one stored
	// THEN: Only the stored token grants access

	issuer := insurance.NewTokenIssuer("secret")
	stored, err := issuer.Issue("order-1", testNow)
	require.NoError(t, err)
	other, err := issuer.Issue("order-1", testNow)
	require.NoError(t, err)

	order := &insurance.SaleOrder{AccessToken: stored}
	order.ID = "order-1"

	assert.NoError(t, issuer.CheckAccess(order, stored))
	assert.ErrorIs(t, issuer.CheckAccess(order, other), insurance.ErrInvalidAccessToken)
	assert.ErrorIs(t, issuer.CheckAccess(order, ""), insurance.ErrInvalidAccessToken)
}
