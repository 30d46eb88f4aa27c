package services

import (
	"fmt"

	"dm-server/auth"
	"dm-server/domain"
	apperrors "dm-server/errors"
	"dm-server/repositories"
)

type IAuthService interface {
	Register(email, password string) (domain.User, error)
	Login(email, password string) (domain.User, Token, error)
	UserInfo(userID string) (domain.User, error)
	UpdateProfile(userID, firstName, lastName, color string) (domain.User, error)
}

type Token string

type AuthService struct {
	users    repositories.IUserRepository
	contacts repositories.IContactIndex
	verifier *auth.Verifier
}

func NewAuthService(users repositories.IUserRepository,
	contacts repositories.IContactIndex, verifier *auth.Verifier) *AuthService {
	return &AuthService{users: users, contacts: contacts, verifier: verifier}
}

func (s *AuthService) Register(email, password string) (domain.User, error) {
	// Business rules (email format, password complexity) are checked before
	// any expensive cryptographic operation.
	if err := auth.ValidateSignup(auth.SignupRequest{Email: email, Password: password}); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidPassword, err)
	}

	// Hashing happens here so the repository never sees a plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.Create(email, hashedPassword)
	if err != nil {
		return domain.User{}, err // propagates ErrUserAlreadyExists when taken
	}

	// Index failures must not lose the signup; search just lags.
	if err := s.contacts.Index(user); err != nil {
		return user, nil
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (domain.User, Token, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks.
		return domain.User{}, "", apperrors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.User{}, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.verifier.Generate(user.ID)
	if err != nil {
		return domain.User{}, "", apperrors.ErrTokenGeneration
	}

	return user, Token(token), nil
}

func (s *AuthService) UserInfo(userID string) (domain.User, error) {
	return s.users.GetByID(userID)
}

func (s *AuthService) UpdateProfile(userID, firstName, lastName, color string) (domain.User, error) {
	req := auth.ProfileRequest{FirstName: firstName, LastName: lastName, Color: color}
	if err := auth.ValidateProfile(req); err != nil {
		return domain.User{}, err
	}

	user, err := s.users.UpdateProfile(userID, firstName, lastName, color)
	if err != nil {
		return domain.User{}, err
	}

	// Keep the search index in sync with the new display name.
	_ = s.contacts.Index(user)
	return user, nil
}
