package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/repository"
	"cloudpilot-backend/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid employee ID or password")

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	emailSvc EmailService
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, emailSvc EmailService) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		emailSvc: emailSvc,
	}
}

func (s *authService) Login(ctx context.Context, employeeID, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateSessionToken(user.EmployeeID, user.Name, user.Role)
	if err != nil {
		return "", nil, err
	}

	logger.Info("User logged in", "employeeID", user.EmployeeID, "role", user.Role)
	return token, user, nil
}

// RequestPasswordReset accepts any known employee ID/email pair and
// dispatches a reset notice. Unknown accounts are not revealed to the
// caller.
func (s *authService) RequestPasswordReset(ctx context.Context, employeeID, email string) error {
	user, err := s.userRepo.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Password reset requested for unknown employee", "employeeID", employeeID)
			return nil
		}
		return err
	}
	if user.Email != email {
		logger.Warn("Password reset email mismatch", "employeeID", employeeID)
		return nil
	}
	return s.emailSvc.SendPasswordResetNotice(ctx, user.Email, user.EmployeeID)
}
