package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActorTokenIssuer is the issuer written into tokens minted by ledgerctl.
const ActorTokenIssuer = "vault-ledger"

// GenerateActorToken signs a token whose subject is recorded as the actor
// of every ledger entry written with it.
func GenerateActorToken(actor string, secret string, expiryDuration time.Duration) (string, error) {
	if actor == "" {
		return "", errors.New("actor is required")
	}
	if secret == "" {
		return "", errors.New("signing secret is required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    ActorTokenIssuer,
		Subject:   actor,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ErrNoSubject is returned for a valid token that names no actor.
var ErrNoSubject = errors.New("token has no subject")

// ParseActorToken verifies an HMAC-signed token and returns its subject.
func ParseActorToken(tokenString string, secretKey string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}
