package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

type Service struct {
	repo       UserStore
	jwtService *JWTService
}

// NewService creates a new auth service
func NewService(repo UserStore, jwtSecret string) *Service {
	return &Service{
		repo:       repo,
		jwtService: NewJWTService(jwtSecret),
	}
}

// Register creates a new shop owner account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		BusinessName: strings.TrimSpace(req.BusinessName),
		Role:         RoleOwner,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		user.PhoneNumber = &phone
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("✅ User registered")

	return s.generateAuthResponse(ctx, user)
}

// Login authenticates user with email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID.String()); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("⚠️ Failed to update last login")
	}

	log.Info().Str("user_id", user.ID.String()).Msg("✅ User logged in")

	return s.generateAuthResponse(ctx, user)
}

// RefreshToken generates new access token from refresh token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userID, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefresh, err)
	}

	// Verify it still matches the one stored for the user
	user, err := s.repo.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefresh, err)
	}
	if user.ID.String() != userID {
		return nil, fmt.Errorf("%w: user mismatch", ErrInvalidRefresh)
	}

	log.Info().Str("user_id", userID).Msg("✅ Token refreshed")

	return s.generateAuthResponse(ctx, user)
}

// Logout revokes user's refresh token
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.repo.RevokeRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	log.Info().Str("user_id", userID).Msg("✅ User logged out")
	return nil
}

// Me returns the current profile
func (s *Service) Me(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

// ValidateToken validates an access token and returns user info
func (s *Service) ValidateToken(accessToken string) (*TokenClaims, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	return claims, nil
}

// generateAuthResponse generates auth response with tokens and user info
func (s *Service) generateAuthResponse(ctx context.Context, user *User) (*AuthResponse, error) {
	claims := &TokenClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
	}

	accessToken, expiresIn, err := s.jwtService.GenerateAccessToken(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, expiresAt, err := s.jwtService.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID.String(), refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         toUserInfo(user),
	}, nil
}
