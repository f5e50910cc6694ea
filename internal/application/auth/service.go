package auth

import (
	"context"
	"strings"

	"akrion-backend/internal/domain"
	"akrion-backend/internal/pkg/apperr"
	"akrion-backend/internal/pkg/constants"
	"akrion-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput for the signup request body.
type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phone_number"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
}

// LoginInput for the login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user account. Self-service signup allows the regular
// and dealer roles only; admins are provisioned out of band.
func Register(ctx context.Context, db *gorm.DB, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))

	if !validation.IsValidUsername(username) {
		return nil, apperr.Validation("user", "username", "username must be 3-30 letters, digits, dots or underscores")
	}
	if !validation.IsValidEmail(email) {
		return nil, apperr.Validation("user", "email", "invalid email format")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, apperr.Validation("user", "password", "password must be 8+ characters with a letter, a digit and a special character")
	}
	if !validation.IsValidPincode(in.Pincode) {
		return nil, apperr.Validation("user", "pincode", "invalid pincode")
	}
	role := in.Role
	if role == "" {
		role = constants.Regular
	}
	if role != constants.Regular && role != constants.Dealer {
		return nil, apperr.Validation("user", "role", "role must be regular or dealer")
	}

	var existing domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, apperr.Validation("user", "email", "email already registered")
	}
	if err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, apperr.Validation("user", "username", "username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		PhoneNumber:  in.PhoneNumber,
		City:         in.City,
		State:        in.State,
		Pincode:      in.Pincode,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// UserFinder abstracts user lookup by email+password (GORM in production,
// doubles in tests).
type UserFinder interface {
	FindByEmailAndPassword(email, password string) (*domain.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByEmailAndPassword(email, password string) (*domain.User, error) {
	return LoginUser(g.DB, LoginInput{Email: email, Password: password})
}

// LoginUser finds the user by email and verifies the password.
func LoginUser(db *gorm.DB, input LoginInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := db.Where("email = ?", strings.ToLower(input.Email)).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// SessionUserShape is the object stored in the session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// VerifyUser validates the session user map and returns the /me shape.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:   userID,
		Username: str(m["username"]),
		Email:    str(m["email"]),
		Role:     str(m["role"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
