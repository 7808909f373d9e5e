package service

import (
	"context"
	"errors"

	"github.com/lumina-lms/lumina-backend/internal/model"
	"github.com/lumina-lms/lumina-backend/internal/repository"
	"github.com/lumina-lms/lumina-backend/internal/response"
	"github.com/rs/zerolog"
)

// ErrUserNotFound is returned when a user lookup misses.
var ErrUserNotFound = errors.New("user not found")

// UserService handles profile and account administration logic.
type UserService struct {
	userRepo *repository.UserRepository
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      log.With().Str("component", "user_service").Logger(),
	}
}

// GetByID retrieves a user.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies the user-editable fields. Unset request fields keep
// their current values.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListPaginated retrieves users for the admin surface.
func (s *UserService) ListPaginated(ctx context.Context, role *model.Role, page, perPage int) ([]model.User, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	users, total, err := s.userRepo.ListPaginated(ctx, role, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return users, pagination, nil
}

// UpdateRole changes a user's role (admin operation).
func (s *UserService) UpdateRole(ctx context.Context, userID int, role model.Role) (*model.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, ErrUserNotFound
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	s.log.Info().Int("user_id", userID).Str("role", string(role)).Msg("User role changed")
	return s.userRepo.GetByID(ctx, userID)
}

// Delete removes a user account and all dependent rows.
func (s *UserService) Delete(ctx context.Context, userID int) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Int("user_id", userID).Msg("User deleted")
	return nil
}
