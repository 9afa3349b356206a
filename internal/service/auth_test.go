package service_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront-labs/shop-wallet/internal/models"
	"github.com/storefront-labs/shop-wallet/internal/service"
)

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		confirm  string
		wantErr  error
	}{
		{"short username", "abc", "password123", "password123", service.ErrUsernameTooShort},
		{"short password", "validuser", "pass", "pass", service.ErrPasswordTooShort},
		{"password mismatch", "validuser", "password123", "password456", service.ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store, nil)

			account, err := svc.Register(context.Background(), "Test", tt.username, "t@example.com", tt.password, tt.confirm, "")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, account)
		})
	}
}

func TestRegister_HashesPasswordAndDefaultsRole(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, nil)

	account, err := svc.Register(context.Background(), "Test User", "testuser", "t@example.com", "password123", "password123", "superuser")

	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, account.Role, "unknown roles fall back to user")
	assert.NotEqual(t, "password123", account.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("password123")))
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, nil)

	_, err := svc.Register(context.Background(), "A", "firstuser", "a@example.com", "password123", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "B", "firstuser", "b@example.com", "password123", "password123", "")
	assert.ErrorIs(t, err, service.ErrAccountExists)

	_, err = svc.Register(context.Background(), "C", "otheruser", "a@example.com", "password123", "password123", "")
	assert.ErrorIs(t, err, service.ErrAccountExists)
}

func TestLogin(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, nil)

	account, err := svc.Register(context.Background(), "Admin", "adminuser", "admin@example.com", "password123", "password123", models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, account.Role)

	t.Run("success", func(t *testing.T) {
		tokenString, role, err := svc.Login(context.Background(), "admin@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, role)

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		sub, err := claims.GetSubject()
		require.NoError(t, err)
		assert.Equal(t, "1", sub)
		assert.Equal(t, models.RoleAdmin, claims["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "admin@example.com", "wrongpass")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}
