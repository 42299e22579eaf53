package services

import (
	"context"
	"errors"
	"time"

	"loanledger/internal/adapters/persistence/models"
	"loanledger/internal/adapters/persistence/repositories"
	"loanledger/internal/core/domain"
	"loanledger/internal/pkg/jwt"
	"loanledger/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	issuer   *jwt.Issuer
	log      *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, issuer *jwt.Issuer, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		log:      log,
		now:      time.Now,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// LoginInput represents login input
type LoginInput struct {
	Username string
	Password string
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      *models.UserResponse `json:"user"`
}

// Register registers a new user.
// A role outside the fixed set silently falls back to User.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Check if username already exists (deactivated users included)
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	// 2. Check if email already exists
	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	// 3. Resolve role
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		role = domain.RoleUser
	}

	// 4. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, domain.ErrPasswordTooLong
		}
		return nil, err
	}

	// 5. Create user
	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         string(role),
		CreatedAt:    s.now().UTC(),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, err
	}

	s.log.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
	)

	return s.buildResponse(user)
}

// Login authenticates an active user. Unknown users, inactive users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find active user by username
	user, err := s.userRepo.GetActiveByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, user.PasswordHash) {
		s.log.Info("login rejected", zap.String("username", input.Username))
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Record last login
	now := s.now().UTC()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.Uint("user_id", user.ID), zap.String("username", user.Username))

	return s.buildResponse(user)
}

// ValidateAccessToken validates an access token and returns the caller it names
func (s *AuthService) ValidateAccessToken(accessToken string) (*domain.Principal, error) {
	claims, err := s.issuer.ValidateToken(accessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     domain.Role(claims.Role),
	}, nil
}

// buildResponse issues a token for user
func (s *AuthService) buildResponse(user *models.User) (*AuthResponse, error) {
	token, expiresAt, err := s.issuer.IssueToken(jwt.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToResponse(),
	}, nil
}
