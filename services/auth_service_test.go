package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/services"
)

func newAuthService(store *memStore) *services.AuthService {
	return services.NewAuthService(store, services.NewTokenService("test-secret"), zap.NewNop())
}

func TestRegister_Success(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store)

	result, err := svc.Register(context.Background(), &services.RegisterRequest{
		Name:     "Asha Rai",
		Email:    "asha@example.com",
		Password: "correct horse",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RoleUser, result.User.Role)

	// password is stored hashed, never in the clear
	stored, err := store.Users().FindByEmail(context.Background(), "asha@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse")))
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store)

	_, err := svc.Register(context.Background(), &services.RegisterRequest{
		Name: "Asha Rai", Email: "asha@example.com", Password: "correct horse",
	})
	assert.NoError(t, err)

	_, err = svc.Register(context.Background(), &services.RegisterRequest{
		Name: "Impostor", Email: "asha@example.com", Password: "another pass",
	})

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestLogin_Success(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store)

	_, err := svc.Register(context.Background(), &services.RegisterRequest{
		Name: "Asha Rai", Email: "asha@example.com", Password: "correct horse",
	})
	assert.NoError(t, err)

	result, err := svc.Login(context.Background(), &services.LoginRequest{
		Email: "asha@example.com", Password: "correct horse",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMemStore()
	svc := newAuthService(store)

	_, err := svc.Register(context.Background(), &services.RegisterRequest{
		Name: "Asha Rai", Email: "asha@example.com", Password: "correct horse",
	})
	assert.NoError(t, err)

	_, err = svc.Login(context.Background(), &services.LoginRequest{
		Email: "asha@example.com", Password: "wrong",
	})

	var unauthorizedErr *services.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorizedErr)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthService(newMemStore())

	_, err := svc.Login(context.Background(), &services.LoginRequest{
		Email: "nobody@example.com", Password: "whatever",
	})

	var unauthorizedErr *services.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorizedErr)
}

func TestLogout_RevokesToken(t *testing.T) {
	store := newMemStore()
	tokens := services.NewTokenService("test-secret")
	svc := services.NewAuthService(store, tokens, zap.NewNop())

	result, err := svc.Register(context.Background(), &services.RegisterRequest{
		Name: "Asha Rai", Email: "asha@example.com", Password: "correct horse",
	})
	assert.NoError(t, err)

	claims, err := tokens.Validate(result.Token)
	assert.NoError(t, err)
	tokenID := claims["jti"].(string)

	assert.False(t, svc.IsTokenRevoked(context.Background(), tokenID))
	assert.NoError(t, svc.Logout(context.Background(), tokenID))
	assert.True(t, svc.IsTokenRevoked(context.Background(), tokenID))
}

func TestIsTokenRevoked_UnknownTokenCountsAsRevoked(t *testing.T) {
	svc := newAuthService(newMemStore())
	assert.True(t, svc.IsTokenRevoked(context.Background(), "never-issued"))
}

func TestTokenService_RejectsTamperedToken(t *testing.T) {
	tokens := services.NewTokenService("test-secret")
	other := services.NewTokenService("different-secret")

	token, _, _, err := tokens.Generate("user-1", "asha@example.com", models.RoleUser)
	assert.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}
