package server

import (
	"strconv"

	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// currentUserID returns the authenticated user ID, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// currentSessionID returns the session ID from the bearer token's jti claim.
func currentSessionID(c *fiber.Ctx) string {
	if sid, ok := c.Locals("sessionID").(string); ok {
		return sid
	}
	return ""
}

// parseIDParam parses the :id route parameter as an unsigned integer.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid ID parameter")
	}
	return uint(id), nil
}

// parsePagination reads limit/offset query parameters with sane bounds.
func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// handleServiceError translates service layer error codes into HTTP responses.
func handleServiceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		status = fiber.StatusNotFound
	case models.CodeValidation:
		status = fiber.StatusBadRequest
	case models.CodeConflict:
		status = fiber.StatusConflict
	case models.CodeInvalidCredential:
		status = fiber.StatusBadRequest
	case models.CodeUnauthorized:
		status = fiber.StatusUnauthorized
	}
	return models.RespondWithError(c, status, err)
}
