package lookup

import (
	"errors"

	"github.com/berge472/izzymart/core/logger"
	"github.com/berge472/izzymart/core/utils"
	"github.com/berge472/izzymart/feature/catalog"
	"github.com/berge472/izzymart/feature/lookup/sources"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for identifier resolution.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the resolver route. It is public so kiosk
// scanners can resolve without an API key.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/products/upc/:upc", h.HandleResolve)
}

// HandleResolve resolves a scanned identifier to a product record.
// @Summary Resolve Product by UPC
// @Description Resolves a UPC/EAN/ISBN to a product record, consulting the catalog cache first and external sources on a miss. With cache=false nothing is persisted and the returned record has no ID.
// @Tags lookup
// @Produce json
// @Param upc path string true "UPC, EAN or ISBN"
// @Param cache query bool false "Persist and reuse catalog entries (default true)"
// @Param type query string false "Override classification" Enums(food, book)
// @Success 200 {object} models.Product
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /products/upc/{upc} [get]
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	upc := c.Params("upc")
	useCache := true
	if v := c.Query("cache"); v != "" {
		useCache = utils.ToBool(v)
	}

	p, err := h.service.Resolve(c.Context(), upc, useCache, c.Query("type"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidKind):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, sources.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
		default:
			l.Error("Resolution failed", zap.String("upc", upc), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(p)
}
