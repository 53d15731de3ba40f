package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/repository"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is what register and login hand back to the controller.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService struct {
	store  repository.Store
	tokens *TokenService
	logger *zap.Logger
}

func NewAuthService(store repository.Store, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, logger: logger}
}

// Register creates a user with a bcrypt-hashed password and issues a token.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	var user *models.User
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		_, err := tx.Users().FindByEmail(ctx, req.Email)
		if err == nil {
			return &ValidationError{Message: "email already exists"}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user = &models.User{
			ID:       uuid.New(),
			Name:     req.Name,
			Email:    req.Email,
			Password: string(hashed),
			Role:     role,
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	user, err := s.store.Users().FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnauthorizedError{Message: "invalid email or password"}
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "invalid email or password"}
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Logout revokes the presented token by its jti.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	return s.store.Users().RevokeAuthToken(ctx, tokenID)
}

// IsTokenRevoked reports whether a token id has been revoked. Unknown token
// ids count as revoked: only tokens this service issued are acceptable.
func (s *AuthService) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	token, err := s.store.Users().FindAuthTokenByTokenID(ctx, tokenID)
	if err != nil {
		return true
	}
	return token.Revoked
}

// GetUser loads a user profile by id.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: userID.String()}
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User) (string, error) {
	token, tokenID, expiresAt, err := s.tokens.Generate(user.ID.String(), user.Email, user.Role)
	if err != nil {
		return "", err
	}
	record := &models.AuthToken{
		TokenID:   tokenID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := s.store.Users().CreateAuthToken(ctx, record); err != nil {
		return "", err
	}
	return token, nil
}
