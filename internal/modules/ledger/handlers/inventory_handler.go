package handlers

import (
	"github.com/MuhamadAgungGumelar/sokotally-be/internal/modules/ledger/services"
	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// ListInventory godoc
// @Summary List inventory
// @Description Stock levels with low-stock flags
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param low_stock query boolean false "Only items at or below their threshold"
// @Success 200 {array} models.InventoryItem
// @Router /inventory [get]
func (h *InventoryHandler) ListInventory(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.inventoryService.List(c.UserContext(), userID, c.QueryBool("low_stock", false))
	if err != nil {
		return writeError(c, err, "Failed to list inventory")
	}

	return c.JSON(items)
}

// ListMovements godoc
// @Summary Stock movements
// @Description Movement ledger of one inventory item, newest first
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param id path string true "Inventory item ID"
// @Param limit query int false "Max rows (max 100)" default(100)
// @Success 200 {array} models.StockMovement
// @Failure 404 {object} map[string]interface{}
// @Router /inventory/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "Invalid inventory ID")
	}

	movements, err := h.inventoryService.Movements(c.UserContext(), userID, id, c.QueryInt("limit", 100))
	if err != nil {
		return writeError(c, err, "Failed to list stock movements")
	}

	return c.JSON(movements)
}
