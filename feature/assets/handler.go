package assets

import (
	"errors"
	"io"

	"github.com/berge472/izzymart/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the asset store.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the file routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/files")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
	group.Get("/:id/download", h.HandleDownload)
	group.Post("/", h.HandleUpload)
	group.Delete("/:id", h.HandleDelete)
}

// HandleList lists all stored assets.
// @Summary List Assets
// @Description Returns metadata for every stored asset.
// @Tags files
// @Produce json
// @Success 200 {array} models.Asset
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /files [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	out, err := h.service.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(out)
}

// HandleGet returns one asset's metadata.
// @Summary Get Asset
// @Tags files
// @Produce json
// @Param id path string true "Asset ID"
// @Success 200 {object} models.Asset
// @Failure 404 {object} map[string]string "Not Found"
// @Router /files/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	asset, err := h.service.GetInfo(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(asset)
}

// HandleDownload serves an asset's raw bytes.
// @Summary Download Asset
// @Tags files
// @Produce octet-stream
// @Param id path string true "Asset ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Not Found"
// @Router /files/{id}/download [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	data, asset, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if asset.ContentType != "" {
		c.Set(fiber.HeaderContentType, asset.ContentType)
	} else {
		c.Set(fiber.HeaderContentType, "application/octet-stream")
	}
	return c.Send(data)
}

// HandleUpload stores an uploaded file, deduplicated by content hash.
// @Summary Upload Asset
// @Description Stores a file. Re-uploading identical content returns the existing asset.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 200 {object} models.Asset
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /files [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(zap.L(), c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file field"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable upload"})
	}

	asset, err := h.service.Put(c.Context(), data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		l.Error("Upload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(asset)
}

// HandleDelete force-removes an asset.
// @Summary Delete Asset
// @Tags files
// @Param id path string true "Asset ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Not Found"
// @Router /files/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "asset deleted"})
}
