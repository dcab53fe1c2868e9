// Package auth issues and verifies bearer tokens and exposes the caller's
// identity to handlers and services.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MikeMC777/construmarket/internal/apperr"
	"github.com/MikeMC777/construmarket/internal/user"
)

// Identity is the authenticated caller. Services trust Role for every
// authorization decision.
type Identity struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == user.RoleAdmin }

func (i Identity) HasRole(roles ...user.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Gateway struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
	now    func() time.Time
}

func NewGateway(secret string, ttl time.Duration, users UserLookup) *Gateway {
	return &Gateway{secret: []byte(secret), ttl: ttl, users: users, now: time.Now}
}

// IssueToken signs an HS256 token for u valid for the gateway TTL.
func (g *Gateway) IssueToken(u *user.User) (string, error) {
	now := g.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

// Identify verifies token and resolves the account behind it. Every failure
// is an AuthenticationFailed error whose message tells the cases apart.
func (g *Gateway) Identify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.Unauthenticated("Access token is required")
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(g.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperr.Unauthenticated("Token expired")
		}
		return Identity{}, apperr.Unauthenticated("Invalid token")
	}
	if claims.UserID == "" {
		return Identity{}, apperr.Unauthenticated("Invalid token")
	}

	u, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Identity{}, apperr.Unauthenticated("User not found")
		}
		return Identity{}, apperr.Internal(err)
	}
	if !u.IsActive {
		return Identity{}, apperr.Unauthenticated("User account is deactivated")
	}
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}
