package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no active user matches
var ErrUserNotFound = errors.New("user not found")

// UserStore is the persistence the auth service needs
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByPhone(ctx context.Context, phone string) (*User, error)
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*User, error)
	ListUsersWithPhone(ctx context.Context) ([]User, error)
	UpdateRefreshToken(ctx context.Context, userID string, refreshToken string, expiresAt time.Time) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RevokeRefreshToken(ctx context.Context, userID string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new auth repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *Repository) first(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where(query, args...).Where("is_active = ?", true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ?", email)
}

// GetUserByID retrieves user by ID
func (r *Repository) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetUserByPhone retrieves the user linked to a WhatsApp number
func (r *Repository) GetUserByPhone(ctx context.Context, phone string) (*User, error) {
	return r.first(ctx, "phone_number = ?", phone)
}

// GetUserByRefreshToken retrieves user by refresh token
func (r *Repository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*User, error) {
	user, err := r.first(ctx, "refresh_token = ?", refreshToken)
	if err != nil {
		return nil, err
	}

	// Check if refresh token is expired
	if user.RefreshTokenExpiresAt != nil && user.RefreshTokenExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("refresh token expired")
	}

	return user, nil
}

// ListUsersWithPhone returns active users reachable over WhatsApp
func (r *Repository) ListUsersWithPhone(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND phone_number IS NOT NULL AND phone_number <> ''", true).
		Find(&users).Error
	return users, err
}

// UpdateRefreshToken updates user's refresh token
func (r *Repository) UpdateRefreshToken(ctx context.Context, userID string, refreshToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"refresh_token":            refreshToken,
			"refresh_token_expires_at": expiresAt,
		}).Error
}

// UpdateLastLogin updates user's last login timestamp
func (r *Repository) UpdateLastLogin(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Update("last_login_at", time.Now()).Error
}

// RevokeRefreshToken revokes (clears) user's refresh token
func (r *Repository) RevokeRefreshToken(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"refresh_token":            nil,
			"refresh_token_expires_at": nil,
		}).Error
}

// EmailExists checks if email already exists
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
