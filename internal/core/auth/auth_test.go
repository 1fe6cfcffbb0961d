package auth

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryStore struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]*User{}}
}

func (m *memoryStore) find(match func(*User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.IsActive && match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryStore) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = user.BeforeCreate(nil)
	cp := *user
	m.users[user.ID.String()] = &cp
	return nil
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	return m.find(func(u *User) bool { return u.Email == email })
}

func (m *memoryStore) GetUserByID(_ context.Context, id string) (*User, error) {
	return m.find(func(u *User) bool { return u.ID.String() == id })
}

func (m *memoryStore) GetUserByPhone(_ context.Context, phone string) (*User, error) {
	return m.find(func(u *User) bool { return u.PhoneNumber != nil && *u.PhoneNumber == phone })
}

func (m *memoryStore) GetUserByRefreshToken(_ context.Context, token string) (*User, error) {
	return m.find(func(u *User) bool { return u.RefreshToken != nil && *u.RefreshToken == token })
}

func (m *memoryStore) ListUsersWithPhone(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.users {
		if u.PhoneNumber != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memoryStore) UpdateRefreshToken(_ context.Context, userID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[userID]
	u.RefreshToken = &token
	u.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (m *memoryStore) UpdateLastLogin(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.users[userID].LastLoginAt = &now
	return nil
}

func (m *memoryStore) RevokeRefreshToken(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID].RefreshToken = nil
	m.users[userID].RefreshTokenExpiresAt = nil
	return nil
}

func (m *memoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	_, err := m.GetUserByEmail(context.Background(), email)
	return err == nil, nil
}

func init() {
	bcryptCost = bcrypt.MinCost
}

func TestService_RegisterLoginRefreshLogout(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewService(store, "test-secret")

	registered, err := svc.Register(ctx, &RegisterRequest{
		Email:       " Wanjiku@Example.com ",
		Password:    "secret123",
		Name:        "Wanjiku",
		PhoneNumber: "+254712345678",
	})
	require.NoError(t, err)
	assert.Equal(t, "wanjiku@example.com", registered.User.Email)
	assert.Equal(t, RoleOwner, registered.User.Role)
	assert.Equal(t, "+254712345678", registered.User.PhoneNumber)

	_, err = svc.Register(ctx, &RegisterRequest{Email: "wanjiku@example.com", Password: "secret123", Name: "Again"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, &LoginRequest{Email: "wanjiku@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, err := svc.Login(ctx, &LoginRequest{Email: "wanjiku@example.com", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(loggedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	_, err = svc.ValidateToken(loggedIn.RefreshToken)
	assert.Error(t, err, "a refresh token must not authenticate requests")

	refreshed, err := svc.RefreshToken(ctx, loggedIn.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, svc.Logout(ctx, claims.UserID))
	_, err = svc.RefreshToken(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTService("secret-a")
	verifier := NewJWTService("secret-b")

	token, _, err := issuer.GenerateAccessToken(&TokenClaims{UserID: "u-1", Email: "a@b.c", Role: RoleOwner})
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.Error(t, err)

	claims, err := issuer.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestJWTService_TypeAndExpiry(t *testing.T) {
	svc := NewJWTService("secret")

	refresh, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, errWrongTokenType)

	userID, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	access, _, err := svc.GenerateAccessToken(&TokenClaims{UserID: "u-1"})
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, errWrongTokenType)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateAccessToken(access)
	assert.Error(t, err, "access token outlives its hour")
}

func TestHandler_Routes(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, "test-secret")
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      func() string
		wantStatus int
	}{
		{"register validates email", "POST", "/auth/register", `{"email":"nope","password":"secret123","name":"A"}`, nil, fiber.StatusBadRequest},
		{"register validates phone format", "POST", "/auth/register", `{"email":"a@b.co","password":"secret123","name":"A","phone_number":"0712"}`, nil, fiber.StatusBadRequest},
		{"register ok", "POST", "/auth/register", `{"email":"a@b.co","password":"secret123","name":"A"}`, nil, fiber.StatusCreated},
		{"register duplicate", "POST", "/auth/register", `{"email":"a@b.co","password":"secret123","name":"A"}`, nil, fiber.StatusConflict},
		{"login bad password", "POST", "/auth/login", `{"email":"a@b.co","password":"wrongpass"}`, nil, fiber.StatusUnauthorized},
		{"login ok", "POST", "/auth/login", `{"email":"a@b.co","password":"secret123"}`, nil, fiber.StatusOK},
		{"me without token", "GET", "/auth/me", "", nil, fiber.StatusUnauthorized},
		{"me with malformed header", "GET", "/auth/me", "", func() string { return "garbage" }, fiber.StatusUnauthorized},
		{"me with token", "GET", "/auth/me", "", func() string {
			resp, err := svc.Login(context.Background(), &LoginRequest{Email: "a@b.co", Password: "secret123"})
			require.NoError(t, err)
			return "Bearer " + resp.AccessToken
		}, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != nil {
				req.Header.Set("Authorization", tt.token())
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.name == "me with token" {
				var info UserInfo
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
				assert.Equal(t, "a@b.co", info.Email)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc.def", "abc.def", nil},
		{"bearer   abc.def ", "abc.def", nil},
		{"", "", errMissingHeader},
		{"abc.def", "", errBadHeader},
		{"Basic dXNlcjpwYXNz", "", errBadHeader},
		{"Bearer ", "", errBadHeader},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := bearerToken(tt.header)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestPasswordRules(t *testing.T) {
	_, err := HashPassword("abc")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("nyanya-200")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(hash, "nyanya-200"))
	assert.ErrorIs(t, VerifyPassword(hash, "nyanya-300"), ErrInvalidCredentials)
	assert.ErrorIs(t, VerifyPassword("not-a-hash", "nyanya-200"), ErrInvalidCredentials)
}

func TestMiddleware_RejectsRefreshToken(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, "test-secret")
	resp, err := svc.Register(context.Background(), &RegisterRequest{Email: "r@b.co", Password: "secret123", Name: "R"})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/who", AuthMiddleware(svc), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUserID(c))
	})
	app.Get("/admin", AuthMiddleware(svc), RequireRole(RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func(path, token string) int {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		res, err := app.Test(req)
		require.NoError(t, err)
		return res.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, call("/who", resp.AccessToken))
	assert.Equal(t, fiber.StatusUnauthorized, call("/who", resp.RefreshToken))
	assert.Equal(t, fiber.StatusForbidden, call("/admin", resp.AccessToken))
}
