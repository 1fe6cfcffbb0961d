package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer = "sokotally"

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var errWrongTokenType = errors.New("wrong token type")

// sokoClaims is the payload of both token kinds. Refresh tokens carry only the user id.
type sokoClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secretKey            []byte
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
	now                  func() time.Time
}

func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey:            []byte(secretKey),
		accessTokenDuration:  time.Hour,           // shop owners chat in long sessions
		refreshTokenDuration: 30 * 24 * time.Hour, // 30 days
		now:                  time.Now,
	}
}

func (s *JWTService) sign(claims sokoClaims, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    tokenIssuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", claims.Type, err)
	}
	return signed, expiresAt, nil
}

// GenerateAccessToken returns the signed token and its lifetime in seconds
func (s *JWTService) GenerateAccessToken(claims *TokenClaims) (string, int64, error) {
	token, _, err := s.sign(sokoClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Type:   tokenTypeAccess,
	}, s.accessTokenDuration)
	if err != nil {
		return "", 0, err
	}
	return token, int64(s.accessTokenDuration.Seconds()), nil
}

func (s *JWTService) GenerateRefreshToken(userID string) (string, time.Time, error) {
	return s.sign(sokoClaims{UserID: userID, Type: tokenTypeRefresh}, s.refreshTokenDuration)
}

// parse checks signature, algorithm, issuer, expiry and that the token is of wantType
func (s *JWTService) parse(tokenString, wantType string) (*sokoClaims, error) {
	claims := &sokoClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s token: %w", wantType, err)
	}
	if claims.Type != wantType {
		return nil, fmt.Errorf("%w: got %q, want %q", errWrongTokenType, claims.Type, wantType)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("invalid user_id in token")
	}
	return claims, nil
}

// ValidateAccessToken rejects refresh tokens even when correctly signed
func (s *JWTService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	claims, err := s.parse(tokenString, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &TokenClaims{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (string, error) {
	claims, err := s.parse(tokenString, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
