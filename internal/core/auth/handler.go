package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/shared/utils"
)

type Handler struct {
	authService *Service
}

func NewHandler(authService *Service) *Handler {
	return &Handler{authService: authService}
}

// RegisterRoutes mounts /auth; logout and me go through the middleware.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	requireAuth := AuthMiddleware(h.authService)

	group := router.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/refresh", h.RefreshToken)
	group.Post("/logout", requireAuth, h.Logout)
	group.Get("/me", requireAuth, h.Me)
}

// bind parses and validates a JSON body, answering 400 itself on failure
func bind[T any](c *fiber.Ctx) (*T, bool, error) {
	var req T
	if err := c.BodyParser(&req); err != nil {
		return nil, false, fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, false, fail(c, fiber.StatusBadRequest, err.Error())
	}
	return &req, true, nil
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// authStatus maps service errors onto HTTP status; 0 means unexpected
func authStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, ErrWeakPassword):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefresh):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return fiber.StatusNotFound
	default:
		return 0
	}
}

// Register godoc
// @Summary Register new user
// @Description Create a shop owner account with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /auth/register [post]
func (h *Handler) Register(c *fiber.Ctx) error {
	req, ok, err := bind[RegisterRequest](c)
	if !ok {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		if status := authStatus(err); status != 0 {
			return fail(c, status, err.Error())
		}
		log.Error().Err(err).Msg("❌ Registration failed")
		return fail(c, fiber.StatusInternalServerError, "Failed to register")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login godoc
// @Summary Login with email and password
// @Description Authenticate user and return JWT tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	req, ok, err := bind[LoginRequest](c)
	if !ok {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		if authStatus(err) == fiber.StatusUnauthorized {
			log.Warn().Str("email", req.Email).Msg("🔒 Login rejected")
			return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		log.Error().Err(err).Msg("❌ Login failed")
		return fail(c, fiber.StatusInternalServerError, "Failed to login")
	}

	return c.JSON(resp)
}

// RefreshToken godoc
// @Summary Refresh access token
// @Description Get new access token using refresh token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/refresh [post]
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	req, ok, err := bind[RefreshTokenRequest](c)
	if !ok {
		return err
	}

	resp, err := h.authService.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("🔒 Token refresh rejected")
		return fail(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
	}

	return c.JSON(resp)
}

// Logout godoc
// @Summary Logout user
// @Description Revoke user's refresh token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *Handler) Logout(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if err := h.authService.Logout(c.UserContext(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("❌ Logout failed")
		return fail(c, fiber.StatusInternalServerError, "Failed to logout")
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me godoc
// @Summary Get current user
// @Description Get authenticated user information
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserInfo
// @Failure 401 {object} map[string]interface{}
// @Router /auth/me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	if userID == "" {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	info, err := h.authService.Me(c.UserContext(), userID)
	if err != nil {
		if authStatus(err) == fiber.StatusNotFound {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID).Msg("❌ Failed to load user")
		return fail(c, fiber.StatusInternalServerError, "Failed to load user")
	}

	return c.JSON(info)
}
