package users

import (
	"context"
	"strings"

	"akrion-backend/internal/domain"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service covers user profile reads and updates.
type Service struct {
	DB *gorm.DB
}

// Get fetches one user by id.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user", userID.String())
		}
		return nil, err
	}
	return &u, nil
}

// Update writes the allowed profile fields. Role, verification and the
// eco-points balance are never updatable here.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*domain.User, error) {
	if len(fields) == 0 {
		return nil, apperr.Validation("user", "", "missing update fields")
	}

	allowed := map[string]bool{
		"email": true, "password": true, "phone_number": true,
		"address": true, "city": true, "state": true, "pincode": true,
	}
	upd := make(map[string]interface{})
	for k, v := range fields {
		if allowed[k] {
			upd[k] = v
		}
	}
	if len(upd) == 0 {
		return nil, apperr.Validation("user", "", "no valid update fields provided")
	}

	if e, ok := upd["email"].(string); ok {
		e = strings.TrimSpace(strings.ToLower(e))
		if !validation.IsValidEmail(e) {
			return nil, apperr.Validation("user", "email", "invalid email format")
		}
		var existing domain.User
		if err := s.DB.WithContext(ctx).
			Where("email = ? AND user_id <> ?", e, userID).First(&existing).Error; err == nil {
			return nil, apperr.Validation("user", "email", "email already registered")
		}
		upd["email"] = e
	}
	if p, ok := upd["password"].(string); ok {
		if !validation.IsValidPassword(p) {
			return nil, apperr.Validation("user", "password", "password must be 8+ characters with a letter, a digit and a special character")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(p), 10)
		if err != nil {
			return nil, err
		}
		delete(upd, "password")
		upd["password_hash"] = string(hash)
	}
	if pc, ok := upd["pincode"].(string); ok && !validation.IsValidPincode(pc) {
		return nil, apperr.Validation("user", "pincode", "invalid pincode")
	}

	res := s.DB.WithContext(ctx).Model(&domain.User{}).
		Where("user_id = ?", userID).Updates(upd)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("user", userID.String())
	}
	return s.Get(ctx, userID)
}
