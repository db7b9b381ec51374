package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"filevault"
	"filevault/internal/http/middleware"
	"filevault/internal/model"
	"filevault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. The files
// group runs behind the auth middleware; handlers trust the owner id it
// resolved and carry no credential logic of their own.
func RegisterRoutes(app *fiber.App, db *sql.DB, fileSvc service.FileService, auth fiber.Handler) {
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(filevault.OpenAPISpec)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	files := app.Group("/api/v1/files", auth)
	files.Get("/", ListFiles(fileSvc))
	files.Post("/upload-url", ReserveUpload(fileSvc))
	files.Patch("/:id/confirm", ConfirmUpload(fileSvc))
	files.Get("/:id/download-url", RequestDownload(fileSvc))
	files.Delete("/:id", DeleteFile(fileSvc))
}

// HealthCheck checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

func ownerIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.OwnerIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// fileIDParam validates the :id path parameter as a UUID.
func fileIDParam(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// ListFiles returns the caller's files with skip/limit pagination.
// @Summary List files
// @Tags files
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Max rows to return"
// @Success 200 {object} service.FileListResult
// @Router /api/v1/files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip, err := strconv.Atoi(c.Query("skip", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SKIP", "invalid skip")
		}
		limit, err := strconv.Atoi(c.Query("limit", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		res, err := svc.List(c.UserContext(), ownerIDFromCtx(c), skip, limit)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ReserveUpload creates a file record and returns a presigned upload URL.
// @Summary Reserve an upload
// @Tags files
// @Param body body service.ReserveRequest true "Upload declaration"
// @Success 201 {object} service.ReserveResult
// @Router /api/v1/files/upload-url [post]
func ReserveUpload(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.ReserveRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.Reserve(c.UserContext(), ownerIDFromCtx(c), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// confirmRequest is the wire shape for a confirm call.
type confirmRequest struct {
	Status model.FileStatus `json:"status"`
}

// ConfirmUpload reports the outcome of a direct-to-store transfer.
// @Summary Confirm or fail an upload
// @Tags files
// @Param id path string true "File ID"
// @Param body body confirmRequest true "Transfer outcome"
// @Success 200 {object} service.ConfirmResult
// @Router /api/v1/files/{id}/confirm [patch]
func ConfirmUpload(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileIDParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req confirmRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.Confirm(c.UserContext(), ownerIDFromCtx(c), id, req.Status)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// RequestDownload returns a presigned download URL for an uploaded file.
// @Summary Request a download URL
// @Tags files
// @Param id path string true "File ID"
// @Success 200 {object} service.DownloadResult
// @Router /api/v1/files/{id}/download-url [get]
func RequestDownload(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileIDParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		res, err := svc.RequestDownload(c.UserContext(), ownerIDFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DeleteFile soft-deletes a file record.
// @Summary Delete a file
// @Tags files
// @Param id path string true "File ID"
// @Success 204
// @Router /api/v1/files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileIDParam(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := svc.Delete(c.UserContext(), ownerIDFromCtx(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
