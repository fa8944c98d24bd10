package auth

import (
	"testing"

	"papertrade-go/internal/config"
	"papertrade-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	return NewService(db, &config.Auth{
		JWTSecret:    "test-secret",
		TokenTTLMins: 60,
	})
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := setupService(t)

		user, err := svc.Register("Alice@Example.com", "supersecret", "Alice", models.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.Equal(t, models.KYCStatusNone, user.KYCStatus)
		assert.NotEqual(t, "supersecret", user.PasswordHash)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		svc := setupService(t)

		_, err := svc.Register("alice@example.com", "supersecret", "Alice", models.RoleUser)
		require.NoError(t, err)
		_, err = svc.Register("alice@example.com", "othersecret", "Alice", models.RoleUser)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		svc := setupService(t)

		_, err := svc.Register("bob@example.com", "short", "Bob", models.RoleUser)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("BadEmail", func(t *testing.T) {
		svc := setupService(t)

		_, err := svc.Register("not-an-email", "supersecret", "Bob", models.RoleUser)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticate(t *testing.T) {
	svc := setupService(t)
	_, err := svc.Register("alice@example.com", "supersecret", "Alice", models.RoleUser)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		user, err := svc.Authenticate("alice@example.com", "supersecret")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := svc.Authenticate("alice@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := svc.Authenticate("nobody@example.com", "supersecret")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := setupService(t)
	user, err := svc.Register("alice@example.com", "supersecret", "Alice", models.RoleAdmin)
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestParseToken_Invalid(t *testing.T) {
	svc := setupService(t)

	_, err := svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Token signed with a different secret
	other := setupService(t)
	other.secretKey = []byte("different-secret")
	user := &models.User{Email: "alice@example.com"}
	token, err := other.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
