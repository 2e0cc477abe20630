package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"projecthub/config"
)

// IdentityClaims is the payload of a session token issued by the external
// identity provider. Subject carries the provider's stable user id.
type IdentityClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}

// ParseIdentityToken verifies a provider-issued session token against the
// shared signing secret.
func ParseIdentityToken(tokenString string) (*IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.ProviderJWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("token is missing identity claims")
	}

	return claims, nil
}
