package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/user"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Service issues bearer tokens against stored credentials. Verification of
// those tokens is the middleware's job; everything downstream only sees the
// resulting principal.
type Service struct {
	users          UserRepository
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(users UserRepository, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.users.GetByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Warn("login failed: unknown email", "email", dto.Email)
		return nil, internal.ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login failed: bad password", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		s.logger.Error("token generation failed", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	return &LoginResponse{
		Token: token,
		User: LoginUser{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
			Avatar:    u.Avatar,
		},
	}, nil
}

// ValidateAccessToken verifies a bearer token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}
