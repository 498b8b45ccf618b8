package chattoken

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Minter issues provider-side chat tokens for an account. Implementations
// wrap whichever chat backend the application uses.
type Minter interface {
	MintUserToken(accountID string) (string, error)
}

// ServerMinter mints HS256 user tokens in the shape chat providers expect:
// a JWT whose payload carries the user id under "user_id". The token has no
// expiry; revocation is handled provider-side.
//
// ServerMinter instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ServerMinter struct {
	secret []byte
}

// NewServerMinter describes the newserverminter operation and its observable behavior.
//
// NewServerMinter may return an error when input validation, dependency calls, or security checks fail.
// NewServerMinter does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewServerMinter(apiSecret string) (*ServerMinter, error) {
	if apiSecret == "" {
		return nil, errors.New("chat api secret is required")
	}
	return &ServerMinter{
		secret: []byte(apiSecret),
	}, nil
}

// MintUserToken describes the mintusertoken operation and its observable behavior.
//
// MintUserToken may return an error when input validation, dependency calls, or security checks fail.
// MintUserToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *ServerMinter) MintUserToken(accountID string) (string, error) {
	if accountID == "" {
		return "", errors.New("account id is required")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": accountID,
	})

	return token.SignedString(m.secret)
}
