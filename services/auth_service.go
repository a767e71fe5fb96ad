//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	goerrors "errors"
	"firechat/auth"
	"firechat/domain"
	"firechat/errors"
	"firechat/repositories"
	"fmt"
	"log/slog"
	"time"
)

type IAuthService interface {
	Register(email, password, displayName, photoURL string) (domain.Token, error)
	Login(email, password string) (domain.Token, error)
	Logout(token string) error
	Authenticate(token string) (domain.Principal, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	issuer         *auth.TokenIssuer
	log            *slog.Logger
}

func NewAuthService(repo repositories.IUserRepository, issuer *auth.TokenIssuer, log *slog.Logger) *AuthService {
	return &AuthService{userRepository: repo, issuer: issuer, log: log}
}

func (s *AuthService) Register(email, password, displayName, photoURL string) (domain.Token, error) {
	// Business rules are checked before any expensive cryptographic operation
	err := auth.ValidateRegister(auth.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
		PhotoURL:    photoURL,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrInvalidRequest, err)
	}

	// The repository never sees plain passwords
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(repositories.User{
		Email:        email,
		DisplayName:  displayName,
		PhotoURL:     photoURL,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return "", err
	}
	s.log.Info("User registered", "user_id", user.ID)

	return s.issue(user)
}

func (s *AuthService) Login(email, password string) (domain.Token, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Email: email, Password: password}); err != nil {
		return "", errors.ErrInvalidCredentials
	}

	// Generic error to prevent user enumeration
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(token string) error {
	claims, err := s.issuer.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	return s.userRepository.Revoke(claims.ID, claims.Remaining(time.Now()))
}

// Authenticate returns the principal behind a valid, non-revoked token.
func (s *AuthService) Authenticate(token string) (domain.Principal, error) {
	claims, err := s.issuer.ValidateToken(token)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
	}
	revoked, err := s.userRepository.IsRevoked(claims.ID)
	if err != nil {
		return domain.Principal{}, err
	}
	if revoked {
		return domain.Principal{}, goerrors.Join(errors.ErrUnauthenticated, errors.ErrTokenRevoked)
	}
	return claims.Principal(), nil
}

func (s *AuthService) issue(user repositories.User) (domain.Token, error) {
	token, err := s.issuer.GenerateToken(domain.Principal{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Email:       user.Email,
	}, user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return domain.Token(token), nil
}
