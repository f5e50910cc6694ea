package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a marketplace account. Role is fixed after creation; admins are
// provisioned out of band, never self-assigned through registration.
type User struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Username     string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         string    `gorm:"column:role;type:varchar(10);not null;default:regular" json:"role"`
	PhoneNumber  string    `gorm:"column:phone_number" json:"phone_number"`
	Address      string    `gorm:"column:address" json:"address"`
	City         string    `gorm:"column:city" json:"city"`
	State        string    `gorm:"column:state" json:"state"`
	Pincode      string    `gorm:"column:pincode;type:varchar(10)" json:"pincode"`
	IsVerified   bool      `gorm:"column:is_verified;default:false" json:"is_verified"`

	// EcoPoints is the cached balance; the eco_points_entries ledger is
	// authoritative and the two must always agree.
	EcoPoints int `gorm:"column:eco_points;not null;default:0" json:"eco_points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
