package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a SokoTally account can have
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// User is a shop owner account. PhoneNumber links the account to the WhatsApp channel.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`

	// Basic Info
	Email        string  `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PhoneNumber  *string `gorm:"type:text;uniqueIndex" json:"phone_number,omitempty"`
	Name         string  `gorm:"type:text;not null" json:"name"`
	BusinessName string  `gorm:"type:text" json:"business_name,omitempty"`
	Role         string  `gorm:"type:text;not null;default:'owner'" json:"role"`

	// Authentication
	PasswordHash string `gorm:"type:text" json:"-"`

	IsActive bool `gorm:"type:boolean;default:true" json:"is_active"`

	// JWT Refresh Token
	RefreshToken          *string    `gorm:"type:text" json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate sets UUID before creating
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest represents registration request payload
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Name         string `json:"name" validate:"required,max=200"`
	BusinessName string `json:"business_name,omitempty" validate:"max=200"`
	PhoneNumber  string `json:"phone_number,omitempty" validate:"omitempty,e164"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"` // seconds
	User         *UserInfo `json:"user"`
}

// UserInfo represents user information in auth response
type UserInfo struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
	Role         string `json:"role"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func toUserInfo(u *User) *UserInfo {
	info := &UserInfo{
		ID:           u.ID.String(),
		Email:        u.Email,
		Name:         u.Name,
		BusinessName: u.BusinessName,
		Role:         u.Role,
	}
	if u.PhoneNumber != nil {
		info.PhoneNumber = *u.PhoneNumber
	}
	return info
}
