package auth

import (
	"time"

	apperrors "dm-server/errors"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Verifier issues and checks bearer credentials. The signing secret is
// injected once at startup; the same instance backs both the HTTP
// middleware and the realtime handshake so a credential is valid in one
// context iff it is valid in the other.
type Verifier struct {
	secret        []byte
	tokenDuration time.Duration
}

func NewVerifier(secret string, tokenDuration time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), tokenDuration: tokenDuration}
}

// Generate creates a signed token for a user.
func (v *Verifier) Generate(userID string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "dm-server",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// Verify validates signature and expiration and returns the embedded user ID.
// An empty credential maps to ErrMissingCredential; anything malformed,
// expired or tampered collapses to ErrInvalidCredential (callers do not get
// to distinguish).
func (v *Verifier) Verify(credential string) (string, error) {
	if credential == "" {
		return "", apperrors.ErrMissingCredential
	}

	token, err := jwt.ParseWithClaims(credential, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", apperrors.ErrInvalidCredential
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", apperrors.ErrInvalidCredential
	}
	return claims.UserID, nil
}
