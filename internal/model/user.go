package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a storefront customer or a back-office administrator
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`
	Address   string         `gorm:"type:text" json:"address"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"`                  // Omit password from JSON requests/responses
	Role      string         `gorm:"type:varchar(20);not null;default:'USER'" json:"role"` // USER, ADMIN
	Orders    []Order        `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Actor is the authenticated caller of a request, as established by the identity layer
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
