// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

// Package sec provides cryptographic primitives and session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [auth.TokenProvider] interface.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind distinguishes the two session token flavors minted by the service.
//
// A refresh token must never be accepted where an access token is expected
// (and vice versa), so the kind travels inside the signed claims.
type TokenKind string

const (
	// KindAccess marks a short-lived token proving identity for one request window.
	KindAccess TokenKind = "access"

	// KindRefresh marks a long-lived token exchangeable for a new token pair.
	KindRefresh TokenKind = "refresh"
)

// SessionClaims represents the payload embedded inside a VidTube session JWT.
//
// The subject ("sub") carries the user ID; Kind pins the token to its role in
// the dual-token scheme.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Kind is abbreviated to keep the JWT payload small.
	Kind TokenKind `json:"tkn"`
}

// UserID returns the token subject (the owning user's ID).
func (c *SessionClaims) UserID() string { return c.Subject }

// TokenService handles generation and verification of JWT tokens using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return NewTokenServiceFromKeys(privateKey, publicKey, issuer), nil
}

// NewTokenServiceFromKeys creates a TokenService from in-memory RSA keys.
// Used by tests and by deployments that inject keys without a filesystem.
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}
}

// Generate mints a signed token of the given kind for a user.
func (service *TokenService) Generate(userID string, kind TokenKind, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Kind: kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a JWT string and enforces the
// expected token kind. It fails closed: any expired, malformed, or
// wrong-kind token yields an error, never partial claims.
func (service *TokenService) Verify(tokenString string, expectedKind TokenKind) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	if claims.Kind != expectedKind {
		return nil, fmt.Errorf("sec: token kind mismatch: got %q, want %q", claims.Kind, expectedKind)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("sec: token has no subject")
	}

	return claims, nil
}
