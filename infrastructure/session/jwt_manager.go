package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"celestia/domain/entities"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const issuer = "celestia"

// Claims are the registered claims carried by a session token
type Claims struct {
	jwt.RegisteredClaims
}

// JWTManager issues HS256 bearer tokens and checks them against a revocation store
type JWTManager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewJWTManager creates a session manager. A nil store keeps revocations in memory.
func NewJWTManager(secret string, ttl time.Duration, revoked RevocationStore) *JWTManager {
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &JWTManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a token for userID that expires after the configured TTL
func (m *JWTManager) Issue(ctx context.Context, userID int64) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Validate returns the user id of a valid, unrevoked token
func (m *JWTManager) Validate(ctx context.Context, token string) (int64, error) {
	claims, err := m.parse(token)
	if err != nil {
		return 0, err
	}

	revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return 0, fmt.Errorf("%w: token revoked", entities.ErrUnauthenticated)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: invalid subject", entities.ErrUnauthenticated)
	}
	return userID, nil
}

// Revoke marks the token's id as revoked until the token would have expired
func (m *JWTManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}

	ttl := claims.ExpiresAt.Time.Sub(m.now())
	if err := m.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	log.WithField("subject", claims.Subject).Info("Session revoked")
	return nil
}

func (m *JWTManager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", entities.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: %v", entities.ErrUnauthenticated, err)
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, fmt.Errorf("%w: invalid token", entities.ErrUnauthenticated)
	}
	return claims, nil
}
