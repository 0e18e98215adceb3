// Package token issues and verifies the JWT pairs used for authentication.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"learnhub_backend/platform/apperr"
	"learnhub_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TypeAccess marks short-lived tokens accepted by the auth middleware.
	TypeAccess = "access"
	// TypeRefresh marks long-lived tokens accepted only by the refresh flow.
	TypeRefresh = "refresh"
	// TypeVerify marks single-purpose tokens accepted only by the email
	// verification flow.
	TypeVerify = "verify"
)

// verifyTTL bounds how long an emailed verification link stays valid.
const verifyTTL = 24 * time.Hour

// Claims is the identity payload carried by both token types.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Pair is an access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer signs and verifies token pairs with a shared HMAC secret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates a token issuer from auth configuration.
func NewIssuer(cfg config.AuthServiceConfig) *Issuer {
	return &Issuer{
		secret:     []byte(cfg.GetJWTSecret()),
		accessTTL:  cfg.GetAccessTokenTTL(),
		refreshTTL: cfg.GetRefreshTokenTTL(),
	}
}

// IssuePair signs a fresh access and refresh token for the identity.
func (i *Issuer) IssuePair(claims Claims) (Pair, error) {
	access, err := i.sign(claims, TypeAccess, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(claims, TypeRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// ParseRefresh verifies a refresh token's signature, expiry, and type,
// returning the embedded identity.
func (i *Issuer) ParseRefresh(raw string) (Claims, error) {
	return i.parse(raw, TypeRefresh)
}

// IssueVerify signs an email verification token for the identity.
func (i *Issuer) IssueVerify(claims Claims) (string, error) {
	return i.sign(claims, TypeVerify, verifyTTL)
}

// ParseVerify verifies a verification token's signature, expiry, and type.
// Access and refresh tokens are rejected here.
func (i *Issuer) ParseVerify(raw string) (Claims, error) {
	return i.parse(raw, TypeVerify)
}

func (i *Issuer) sign(claims Claims, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": claims.UserID.String(),
		"email":  claims.Email,
		"role":   claims.Role,
		"type":   tokenType,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	})
	return t.SignedString(i.secret)
}

func (i *Issuer) parse(raw, wantType string) (Claims, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperr.Unauthorized("Token has expired")
		}
		return Claims{}, apperr.Unauthorized("Invalid token")
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperr.Unauthorized("Invalid token")
	}
	if tokenType, _ := mapClaims["type"].(string); tokenType != wantType {
		return Claims{}, apperr.Unauthorized("Invalid token")
	}

	rawID, _ := mapClaims["userId"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return Claims{}, apperr.Unauthorized("Invalid token")
	}

	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	return Claims{UserID: userID, Email: email, Role: role}, nil
}

// Digest returns the hex SHA-256 of a token, used as the blacklist key so
// raw refresh tokens never land in Redis.
func Digest(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
