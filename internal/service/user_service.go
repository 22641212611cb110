package service

import (
	"strings"

	"go-inventory-api/internal/model"
	"go-inventory-api/internal/repository"

	"github.com/google/uuid"
)

type UserService interface {
	GetProfile(userID uuid.UUID) (*model.UserResponse, error)
	UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error)
	ResetPassword(email, newPassword string) error
}

type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=2,max=100"`
	Phone    *string `json:"phone" validate:"omitnil,max=20"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=6"` // Optional
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFound("find user", err, ErrUserNotFound)
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error) {
	// 1. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}

	// 2. Find existing user
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFound("find user", err, ErrUserNotFound)
	}

	// 3. Update user fields
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, persistence("hash password", err)
		}
	}
	user.UpdatedBy = userID.String()

	// 4. Save to database
	if err := s.userRepo.Update(user); err != nil {
		return nil, persistence("update user", err)
	}

	response := user.ToResponse()
	return &response, nil
}

// ResetPassword is the operator path used by cmd/reset-password
func (s *userService) ResetPassword(email, newPassword string) error {
	if len(newPassword) < 6 {
		return &ValidationError{Field: "password", Tag: "min", Message: "password must be at least 6 characters"}
	}

	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return notFound("find user", err, ErrUserNotFound)
	}

	var tmp model.User
	if err := tmp.SetPassword(newPassword); err != nil {
		return persistence("hash password", err)
	}
	if err := s.userRepo.UpdatePassword(user.ID, tmp.Password); err != nil {
		return persistence("update password", err)
	}
	return nil
}
