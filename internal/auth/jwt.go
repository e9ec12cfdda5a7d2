// Package auth issues and verifies the bearer tokens of clients and admins.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims are the custom JWT claims. Subject holds the client or admin id.
type Claims struct {
	Role        string   `json:"role"`
	AdminRole   string   `json:"admin_role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Email       string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenManager(cfg Config) *TokenManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Issue signs a token for the subject with the given claims template.
func (m *TokenManager) Issue(id int64, claims Claims) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(id, 10),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) IssueClient(id int64, email string) (string, time.Time, error) {
	return m.Issue(id, Claims{Role: RoleClient, Email: email})
}

func (m *TokenManager) IssueAdmin(id int64, email, adminRole string, permissions []string) (string, time.Time, error) {
	return m.Issue(id, Claims{Role: RoleAdmin, AdminRole: adminRole, Permissions: permissions, Email: email})
}

// Parse verifies signature, issuer and expiry.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HasPermission reports whether an admin token grants perm.
func (c *Claims) HasPermission(perm string) bool {
	if c.Role != RoleAdmin {
		return false
	}
	if c.AdminRole == "super_admin" {
		return true
	}
	for _, p := range c.Permissions {
		if p == "*" || p == perm {
			return true
		}
	}
	return false
}
