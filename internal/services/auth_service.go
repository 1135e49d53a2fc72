package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errUsernameTaken = apperrors.New(http.StatusConflict, "Username already exists", nil)

// Session is a signed-in user with their token.
type Session struct {
	User  *models.User
	Token string
}

type AuthService struct {
	users         repository.UserRepository
	tokens        *TokenService
	adminUsername string
}

// NewAuthService wires auth. Registering adminUsername yields an admin
// account; every other user is a plain user.
func NewAuthService(users repository.UserRepository, tokens *TokenService, adminUsername string) *AuthService {
	return &AuthService{users: users, tokens: tokens, adminUsername: strings.TrimSpace(adminUsername)}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)

	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil, errUsernameTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Username: username,
		Password: string(hashed),
		IsAdmin:  s.adminUsername != "" && strings.EqualFold(username, s.adminUsername),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errUsernameTaken.Wrap(err)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	zap.L().Info("User registered", zap.Uint("user_id", user.ID), zap.Bool("admin", user.IsAdmin))
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.session(user)
}

// Me returns the user behind a validated token.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, apperrors.ErrUnauthorized)
	}
	return user, nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}
