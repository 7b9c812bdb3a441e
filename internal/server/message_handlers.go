package server

import (
	"warbler/internal/middleware"
	"warbler/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createMessageRequest struct {
	Text string `json:"text"`
}

// HomeTimeline returns the most recent messages from the viewer and everyone
// they follow, newest first. Anonymous viewers get an empty feed.
func (s *Server) HomeTimeline(c *fiber.Ctx) error {
	messages, err := s.messageService.HomeTimeline(c.UserContext(), currentUserID(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	if messages == nil {
		messages = []*models.Message{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"messages": messages,
	})
}

// CreateMessage posts a new message owned by the authenticated user.
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req createMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	userID := currentUserID(c)

	message, err := s.messageService.Post(c.UserContext(), userID, req.Text)
	if err != nil {
		return handleServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "message posted",
		"user_id", userID, "message_id", message.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
	})
}

// ShowMessage returns a single message with author and like metadata.
func (s *Server) ShowMessage(c *fiber.Ctx) error {
	messageID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	message, err := s.messageService.GetMessage(c.UserContext(), currentUserID(c), messageID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
	})
}

// DeleteMessage removes a message. Only the owner may delete it.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	messageID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := s.messageService.Delete(c.UserContext(), currentUserID(c), messageID); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Message deleted",
	})
}

// ToggleLike flips the authenticated user's like on a message.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	messageID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	liked, err := s.messageService.ToggleLike(c.UserContext(), currentUserID(c), messageID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"liked": liked,
	})
}
