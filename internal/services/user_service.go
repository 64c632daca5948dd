package services

import (
	"context"
	"log"
	"strings"

	"vms-backend/internal/apperr"
	"vms-backend/internal/auth"
	"vms-backend/internal/models"
)

// UserService handles accounts: registration, login and profile
// self-service.
type UserService struct {
	Users UserStore
	JWT   *auth.JWTManager
}

func NewUserService(users UserStore, jwt *auth.JWTManager) *UserService {
	return &UserService{Users: users, JWT: jwt}
}

// Register creates an account. Usernames and emails are unique,
// case-insensitively for email.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" {
		return nil, apperr.New(apperr.KindValidation, "username is required")
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, apperr.New(apperr.KindValidation, "invalid email format")
	}
	if len(req.Password) < 6 {
		return nil, apperr.New(apperr.KindValidation, "password must be at least 6 characters")
	}
	if !models.ValidRole(req.Role) {
		return nil, apperr.Newf(apperr.KindValidation, "invalid role: %s", req.Role)
	}

	if _, err := s.Users.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperr.New(apperr.KindConflict, "username already taken")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.Users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.New(apperr.KindConflict, "email already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("✓ Registered user %s (%s)", u.Username, u.Role)
	return u, nil
}

// Login authenticates by username or email and returns a signed token.
// Failures are deliberately indistinguishable.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	u, err := s.Users.GetByUsername(ctx, identifier)
	if apperr.IsNotFound(err) {
		u, err = s.Users.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.New(apperr.KindAuthorization, "invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, apperr.New(apperr.KindAuthorization, "invalid credentials")
	}
	token, err := s.JWT.Generate(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token}, nil
}

// Profile returns the calling user's account.
func (s *UserService) Profile(ctx context.Context, actor auth.Actor) (*models.User, error) {
	return s.Users.GetByID(ctx, actor.UserID)
}

// UpdateEmail changes the caller's email address.
func (s *UserService) UpdateEmail(ctx context.Context, actor auth.Actor, req models.UpdateProfileRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if !emailPattern.MatchString(email) {
		return nil, apperr.New(apperr.KindValidation, "invalid email format")
	}
	if other, err := s.Users.GetByEmail(ctx, email); err == nil && other.ID != actor.UserID {
		return nil, apperr.New(apperr.KindConflict, "email already registered")
	} else if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	if err := s.Users.UpdateEmail(ctx, actor.UserID, email); err != nil {
		return nil, err
	}
	return s.Users.GetByID(ctx, actor.UserID)
}

// ChangePassword verifies the old password before storing the new one.
func (s *UserService) ChangePassword(ctx context.Context, actor auth.Actor, req models.ChangePasswordRequest) error {
	u, err := s.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
		return apperr.New(apperr.KindValidation, "old password is incorrect")
	}
	if len(req.NewPassword) < 6 {
		return apperr.New(apperr.KindValidation, "password must be at least 6 characters")
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, actor.UserID, hash)
}
