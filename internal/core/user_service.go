package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"launchkit-backend-go/internal/db"
	"launchkit-backend-go/internal/models"
)

type userService struct {
	userRepo    db.UserRepository
	adminEmails map[string]struct{}
	logger      *zap.Logger
	now         func() time.Time
}

// NewUserService creates a UserService. adminEmails is the allow-list consulted for every
// admin check; entries are compared case-insensitively.
func NewUserService(ur db.UserRepository, adminEmails []string, logger *zap.Logger) UserService {
	allow := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allow[e] = struct{}{}
		}
	}
	return &userService{userRepo: ur, adminEmails: allow, logger: logger, now: time.Now}
}

// Upsert writes the user mirrored from an identity provider event. The plan and creation time
// of an existing user are preserved; the role is re-derived from the allow-list.
func (s *userService) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	if user == nil || user.ID == "" {
		return nil, errors.New("user id is required")
	}
	now := s.now().UTC()
	user.Email = strings.TrimSpace(user.Email)

	existing, err := s.userRepo.GetByID(ctx, user.ID)
	switch {
	case err == nil:
		user.Plan = existing.Plan
		user.CreatedAt = existing.CreatedAt
	case errors.Is(err, db.ErrNotFound):
		user.Plan = models.PlanTrial
		user.CreatedAt = now
	default:
		return nil, fmt.Errorf("failed to load user '%s': %w", user.ID, err)
	}
	if user.Plan == "" {
		user.Plan = models.PlanTrial
	}
	user.Role = models.RoleUser
	if s.IsAdminEmail(user.Email) {
		user.Role = models.RoleAdmin
	}
	user.UpdatedAt = now

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user '%s': %w", user.ID, err)
	}
	return user, nil
}

// Delete removes the mirrored user. Deleting an unknown user is not an error.
func (s *userService) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	return nil
}

func (s *userService) IsAdminEmail(email string) bool {
	_, ok := s.adminEmails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// IsAdmin checks the allow-list against the token email, falling back to the stored email
// when the token carries none.
func (s *userService) IsAdmin(ctx context.Context, userID, email string) (bool, error) {
	if email != "" {
		return s.IsAdminEmail(email), nil
	}
	if userID == "" {
		return false, nil
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load user '%s' for admin check: %w", userID, err)
	}
	return s.IsAdminEmail(user.Email), nil
}
