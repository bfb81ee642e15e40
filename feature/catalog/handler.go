package catalog

import (
	"errors"

	"github.com/berge472/izzymart/core/logger"
	"github.com/berge472/izzymart/feature/catalog/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the product catalog.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the product routes. The image endpoint is public
// (exempted from API key auth in cmd/start.go) so stored images can be
// embedded inline.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/products")
	group.Post("/", h.HandleCreate)
	group.Get("/", h.HandleGetAll)
	group.Get("/upc/:upc/image", h.HandleImage)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	case errors.Is(err, ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// HandleCreate creates a product.
// @Summary Create Product
// @Description Creates a product. Image asset IDs listed in `images` gain a reference to the new product.
// @Tags products
// @Accept json
// @Produce json
// @Param product body models.Product true "Product"
// @Success 200 {object} models.Product
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /products [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var p models.Product
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed product body"})
	}
	if p.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	created, err := h.service.Create(c.Context(), &p)
	if err != nil {
		l.Error("Product create failed", zap.Error(err))
		return h.fail(c, err)
	}
	return c.JSON(created)
}

// HandleGetAll lists all products.
// @Summary List Products
// @Tags products
// @Produce json
// @Success 200 {array} models.Product
// @Router /products [get]
func (h *Handler) HandleGetAll(c *fiber.Ctx) error {
	out, err := h.service.GetAll(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// HandleGet returns one product by ID.
// @Summary Get Product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Product
// @Failure 404 {object} map[string]string "Not Found"
// @Router /products/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	p, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

// HandleUpdate overwrites a product.
// @Summary Update Product
// @Description Updates a product. Changes to the image list adjust asset references by symmetric difference.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body models.Product true "Product"
// @Success 200 {object} models.Product
// @Failure 404 {object} map[string]string "Not Found"
// @Router /products/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var p models.Product
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed product body"})
	}

	updated, err := h.service.Update(c.Context(), c.Params("id"), &p)
	if err != nil {
		l.Error("Product update failed", zap.Error(err))
		return h.fail(c, err)
	}
	return c.JSON(updated)
}

// HandleDelete removes a product and its asset references.
// @Summary Delete Product
// @Tags products
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Not Found"
// @Router /products/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	l.Info("Product deleted", zap.String("product_id", c.Params("id")))
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// HandleImage serves a product's first image inline.
// @Summary Product Image
// @Description Serves the raw bytes of the product's first image. Public endpoint for inline embedding.
// @Tags products
// @Produce octet-stream
// @Param upc path string true "Product UPC"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Not Found"
// @Router /products/upc/{upc}/image [get]
func (h *Handler) HandleImage(c *fiber.Ctx) error {
	data, contentType, err := h.service.Image(c.Context(), c.Params("upc"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
