package domain

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	ProviderLocal = "local"
	DefaultRole   = "user"

	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

type userService struct {
	users UserRepository
	hash  func(password string) (string, error)
}

func NewUserService(users UserRepository) UserService {
	return &userService{
		users: users,
		hash:  hashPassword,
	}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	provider := strings.TrimSpace(input.AuthProvider)
	if provider == "" {
		provider = ProviderLocal
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = DefaultRole
	}

	var credentialHash string
	if provider == ProviderLocal {
		if len(input.Password) < minPasswordLength || len(input.Password) > maxPasswordLength {
			return User{}, fmt.Errorf("%w: password must be %d to %d bytes", ErrInvalidInput, minPasswordLength, maxPasswordLength)
		}
		hash, err := s.hash(input.Password)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		credentialHash = hash
	}

	return s.users.Create(ctx, CreateUserRecord{
		Email:          email,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Role:           role,
		CredentialHash: credentialHash,
		AuthProvider:   provider,
		IsActive:       !input.Inactive,
	})
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
