package services

import (
	"firechat/auth"
	"firechat/errors"
	"firechat/mocks"
	"firechat/repositories"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "a-test-secret-long-enough-for-hs256"

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	issuer := auth.NewTokenIssuer(testSecret, 24*time.Hour)
	svc := NewAuthService(mockRepo, issuer, slog.Default())

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		email := "test@example.com"
		password := "ComplexPass123!"

		// The stored hash is never the plain password
		mockRepo.EXPECT().
			CreateUser(gomock.Any()).
			DoAndReturn(func(user repositories.User) (repositories.User, error) {
				req.Equal(email, user.Email)
				req.Equal("Tester", user.DisplayName)
				req.NotEqual(password, user.PasswordHash)
				match, err := auth.ComparePassword(password, user.PasswordHash)
				req.NoError(err)
				req.True(match)
				user.ID = "user-uuid"
				user.Roles = []string{"user"}
				return user, nil
			}).
			Times(1)

		token, err := svc.Register(email, password, "Tester", "")
		req.NoError(err)
		req.NotEmpty(token)

		claims, err := issuer.ValidateToken(token.String())
		req.NoError(err)
		req.Equal("user-uuid", claims.UserID)
		req.Equal("Tester", claims.DisplayName)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateUser(gomock.Any()).Times(0)

		token, err := svc.Register("test@example.com", "simple", "Tester", "")
		req.ErrorIs(err, errors.ErrInvalidRequest)
		req.Empty(token)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser(gomock.Any()).
			Return(repositories.User{}, errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("duplicate@example.com", "ComplexPass123!", "Tester", "")
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	issuer := auth.NewTokenIssuer(testSecret, 24*time.Hour)
	svc := NewAuthService(mockRepo, issuer, slog.Default())

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"
		password := "Secret123456!"

		hashedPassword, err := auth.HashPassword(password)
		req.NoError(err)
		storedUser := repositories.User{
			ID:           "uuid-123",
			Email:        email,
			DisplayName:  "User",
			PasswordHash: hashedPassword,
			Roles:        []string{"user"},
		}

		mockRepo.EXPECT().
			GetUserByEmail(email).
			Return(storedUser, nil).
			Times(1)

		token, err := svc.Login(email, password)
		req.NoError(err)

		claims, err := issuer.ValidateToken(token.String())
		req.NoError(err)
		req.Equal(storedUser.ID, claims.UserID)
		req.Equal(email, claims.Email)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"

		hashedPassword, err := auth.HashPassword("CorrectPassword123!")
		req.NoError(err)

		mockRepo.EXPECT().
			GetUserByEmail(email).
			Return(repositories.User{Email: email, PasswordHash: hashedPassword}, nil).
			Times(1)

		_, err = svc.Login(email, "WrongPassword123!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByEmail("unknown@example.com").
			Return(repositories.User{}, badger.ErrKeyNotFound).
			Times(1)

		_, err := svc.Login("unknown@example.com", "anyPassword")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

func TestAuthService_Logout(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	svc := NewAuthService(repositories.NewUserRepository(db),
		auth.NewTokenIssuer(testSecret, time.Hour), slog.Default())

	token, err := svc.Register("alice@example.com", "ComplexPass123!", "Alice", "https://example.com/alice.png")
	req.NoError(err)

	principal, err := svc.Authenticate(token.String())
	req.NoError(err)
	req.Equal("Alice", principal.DisplayName)
	req.Equal("alice@example.com", principal.Email)

	// When signing out
	req.NoError(svc.Logout(token.String()))

	// Then the token is refused
	_, err = svc.Authenticate(token.String())
	req.ErrorIs(err, errors.ErrUnauthenticated)
	req.ErrorIs(err, errors.ErrTokenRevoked)

	// And a new sign-in works
	fresh, err := svc.Login("alice@example.com", "ComplexPass123!")
	req.NoError(err)
	_, err = svc.Authenticate(fresh.String())
	req.NoError(err)

	_, err = svc.Authenticate("garbage")
	req.ErrorIs(err, errors.ErrUnauthenticated)
}
