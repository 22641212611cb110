package service

import (
	"errors"
	"strings"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"
	"go-inventory-api/pkg/jwt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(req *RegisterRequest) (*AuthResponse, error)
	Login(email, password string) (*AuthResponse, error)
	Refresh(refreshToken string) (*AuthResponse, error)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"max=20"`
}

type AuthResponse struct {
	jwt.TokenPair
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"` // Flat privileges array for easy checking
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Register creates a cliente account. Administrators come from cmd/seed.
func (s *authService) Register(req *RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	// 1. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Check if email already exists
	if existing, err := s.userRepo.FindByEmail(req.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	// 3. Create user
	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     model.RoleClient,
		Phone:    req.Phone,
		IsActive: true,
	}
	user.CreatedBy = "self-registration"
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	// 4. Save to database
	if err := s.userRepo.Create(user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, persistence("create user", err)
	}

	log.WithField("user_id", user.ID).Info("user registered")
	return s.issue(user)
}

func (s *authService) Login(email, password string) (*AuthResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, persistence("find user", err)
		}
		return nil, ErrInvalidCredentials
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair
func (s *authService) Refresh(refreshToken string) (*AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*AuthResponse, error) {
	pair, err := s.tokens.GenerateTokens(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &AuthResponse{
		TokenPair:  *pair,
		User:       user.ToResponse(),
		Privileges: user.Role.Privileges(),
	}, nil
}
