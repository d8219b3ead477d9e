package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/internal/db"
	"github.com/kasbino/kasbino-backend/pkg/util"
)

func setupAuthServiceTest(t *testing.T) (*gorm.DB, AuthService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(
		userRepo,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	return testDB, authService
}

func TestAuthService_Register(t *testing.T) {
	testDB, authService := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid registration",
			username: "testuser",
			email:    "test@example.com",
			password: "password123",
			wantErr:  nil,
		},
		{
			name:     "duplicate username",
			username: "testuser",
			email:    "other@example.com",
			password: "password456",
			wantErr:  ErrUsernameAlreadyExists,
		},
		{
			name:     "duplicate email",
			username: "otheruser",
			email:    "test@example.com",
			password: "password456",
			wantErr:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.username, tt.email, tt.password, "Test User", "", "تهران")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, tt.username, user.Username)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	testDB, authService := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	username := "testuser"
	password := "password123"
	_, _, err := authService.Register(username, "test@example.com", password, "Test User", "", "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "valid login",
			username: username,
			password: password,
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			username: username,
			password: "wrongpassword",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: password,
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)

				claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
				require.NoError(t, err)
				assert.Equal(t, user.ID, claims.UserID)
				assert.Equal(t, username, claims.Username)
			}
		})
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	testDB, authService := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	created, _, err := authService.Register("testuser", "test@example.com", "password123", "Test User", "", "")
	require.NoError(t, err)

	user, err := authService.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Username, user.Username)

	_, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	testDB, authService := setupAuthServiceTest(t)
	defer db.CleanupTestDB(testDB)

	created, _, err := authService.Register("testuser", "test@example.com", "password123", "Old Name", "09120000000", "تهران")
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(created.ID, "New Name", "", "شیراز", "")
	require.NoError(t, err)

	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "شیراز", updated.City)
	// untouched fields keep their values
	assert.Equal(t, "09120000000", updated.Phone)

	_, err = authService.UpdateProfile(9999, "Name", "", "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
