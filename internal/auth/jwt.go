// Package auth issues and validates the tokens that identify users, and
// hashes their passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"pairchat/internal/normalize"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// JWTManager signs and validates JWT tokens used by the API.
type JWTManager struct {
	secretKey string        // Secret key for HMAC signing (should be from environment)
	duration  time.Duration // How long tokens are valid (e.g., 24 hours)
}

// Claims is the custom JWT payload (user id + display name + email).
type Claims struct {
	UserID               string `json:"user_id"`      // MongoDB ObjectID converted to hex string
	DisplayName          string `json:"display_name"` // Name shown to other users at token time
	Email                string `json:"email"`        // Normalized user email
	jwt.RegisteredClaims        // Includes ExpiresAt, IssuedAt, etc.
}

// Session returns the session context carried by these claims.
func (c *Claims) Session() Session {
	return Session{UserID: c.UserID, DisplayName: c.DisplayName, Email: c.Email}
}

// NewJWTManager returns a configured JWTManager.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: secretKey,
		duration:  duration,
	}
}

// GenerateToken issues a signed JWT token for a user.
func (m *JWTManager) GenerateToken(userID bson.ObjectID, displayName, email string) (string, time.Time, error) {
	// Calculate when this token will expire (current time + duration)
	expiresAt := time.Now().Add(m.duration)

	// Create claims struct with user info and expiration. The email is
	// normalized so every layer downstream compares the same form.
	claims := &Claims{
		UserID:      userID.Hex(),
		DisplayName: displayName,
		Email:       normalize.Email(email),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	// Sign with HS256 (HMAC with SHA-256)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// VerifyToken parses and validates a token and returns its claims.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	// ParseWithClaims parses the token and validates the signature.
	// The callback validates the signing method before returning the key.
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Security check: ensure token was signed with HMAC (not asymmetric key)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	// Verify token is actually valid (checks signature and expiration)
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// HashPassword returns a bcrypt hash for the provided plaintext.
func HashPassword(password string) (string, error) {
	// Default cost (10 rounds) balances security and login latency
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) error {
	// CompareHashAndPassword returns nil if password matches hash, error otherwise.
	// This is timing-safe against brute-force attacks.
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
