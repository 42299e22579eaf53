package services

import (
	"context"
	"errors"

	"loanledger/internal/adapters/persistence/models"
	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/core/domain"
	"loanledger/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
	log      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, log *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      log,
	}
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// GetUser gets an active user by ID
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// GetUserByUsername gets an active user by username
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// ListActiveUsers lists active users ordered by username
func (s *UserService) ListActiveUsers(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCurrentPasswordWrong
		}
		return err
	}

	// Verify current password
	if !password.Verify(input.CurrentPassword, user.PasswordHash) {
		return domain.ErrCurrentPasswordWrong
	}

	// Validate new password
	if len(input.NewPassword) > password.MaxLength {
		return domain.ErrPasswordTooLong
	}
	if !password.ValidatePassword(input.NewPassword) {
		return domain.Validation("new password must be at least 8 characters")
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info("password changed", zap.Uint("user_id", userID))
	return nil
}

// UpdateRole overwrites the role of an active user
func (s *UserService) UpdateRole(ctx context.Context, userID uint, newRole string) error {
	role, ok := domain.ParseRole(newRole)
	if !ok {
		return domain.ErrInvalidRoleOrUser
	}

	user, err := s.userRepo.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrInvalidRoleOrUser
		}
		return err
	}

	user.Role = string(role)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info("user role updated", zap.Uint("user_id", userID), zap.String("role", user.Role))
	return nil
}

// Deactivate clears the active flag. The row is kept so the username and
// email stay claimed.
func (s *UserService) Deactivate(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info("user deactivated", zap.Uint("user_id", userID))
	return nil
}
