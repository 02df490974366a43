package insurance

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/warp/insurance-engine/schedule"
)

// =============================================================================
// PORTAL ACCESS TOKENS
// =============================================================================
//
// Every order gets one access token, embedded in the portal URL sent to the
// customer. The token is an HS256 JWT whose subject is the order id. It is
// stored on the order, so a portal request must present both a valid
// signature and the exact stored token.

type TokenIssuer struct {
	secret []byte
	issuer string
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: "insurance-engine"}
}

// Issue creates a token for the order. Tokens carry a random id so
// re-issuing always yields a new value.
func (ti *TokenIssuer) Issue(orderID schedule.OrderID, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Issuer:   ti.issuer,
		Subject:  string(orderID),
		IssuedAt: jwt.NewNumericDate(now),
	})
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and that the token belongs to orderID.
func (ti *TokenIssuer) Verify(tokenString string, orderID schedule.OrderID) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(ti.issuer))
	if err != nil {
		return errors.Join(ErrInvalidAccessToken, err)
	}
	if claims.Subject != string(orderID) {
		return ErrInvalidAccessToken
	}
	return nil
}

// CheckAccess verifies token against the order's stored token.
func (ti *TokenIssuer) CheckAccess(order *SaleOrder, token string) error {
	if token == "" || order.AccessToken == "" || token != order.AccessToken {
		return ErrInvalidAccessToken
	}
	return ti.Verify(token, order.ID)
}
