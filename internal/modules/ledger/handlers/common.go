package handlers

import (
	"errors"
	"time"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/analytics"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/repositories"
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var errUnauthorized = errors.New("unauthorized")

// currentUser reads the user id the auth middleware stored in Locals
func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr := auth.CurrentUserID(c)
	if userIDStr == "" {
		return uuid.Nil, errUnauthorized
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, errUnauthorized
	}
	return userID, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

// writeError maps service errors to status codes; anything unexpected is a 500
func writeError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrInvalidPayload):
		return badRequest(c, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("❌ " + fallback)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}

// pathID parses the :id route parameter
func pathID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// periodFromQuery resolves ?from=&to= (YYYY-MM-DD) or ?period= into a date range
func periodFromQuery(c *fiber.Ctx) (*analytics.DateRange, error) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		return analytics.GetDateRange(c.Query("period", analytics.DefaultPeriod)), nil
	}

	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now
	if from != "" {
		parsed, err := time.ParseInLocation("2006-01-02", from, now.Location())
		if err != nil {
			return nil, errors.New("from must be YYYY-MM-DD")
		}
		start = parsed
	}
	if to != "" {
		parsed, err := time.ParseInLocation("2006-01-02", to, now.Location())
		if err != nil {
			return nil, errors.New("to must be YYYY-MM-DD")
		}
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return nil, errors.New("to must not be before from")
	}
	return analytics.GetCustomDateRange(start, end, ""), nil
}
