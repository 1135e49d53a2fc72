package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

// TokenTTL is the lifetime of a session token and its cookie.
const TokenTTL = 24 * time.Hour

// Claims is what a validated session token carries.
type Claims struct {
	UserID   uint
	Username string
	Role     string
}

func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// TokenService is responsible for creating and validating JWTs.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secretKey: []byte(secret), ttl: TokenTTL}
}

// Generate signs an HS256 session token for user.
func (s *TokenService) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"role":     user.Role(),
		"exp":      now.Add(s.ttl).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate parses and verifies tokenStr.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	sub, _ := mc["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject")
	}
	username, _ := mc["username"].(string)
	role, _ := mc["role"].(string)
	return &Claims{UserID: uint(id), Username: username, Role: role}, nil
}
