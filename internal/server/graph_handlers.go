package server

import (
	"warbler/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Follow makes the authenticated user follow the target user.
func (s *Server) Follow(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	userID := currentUserID(c)

	if err := s.graphService.Follow(c.UserContext(), userID, targetID); err != nil {
		return handleServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "follow created",
		"user_id", userID, "target_id", targetID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Now following",
	})
}

// Unfollow removes the authenticated user's follow of the target.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := s.graphService.Unfollow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Stopped following",
	})
}

// Block makes the authenticated user block the target. The target's follow of
// the blocker, if any, is removed in the same transaction.
func (s *Server) Block(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	userID := currentUserID(c)

	if err := s.graphService.Block(c.UserContext(), userID, targetID); err != nil {
		return handleServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "block created",
		"user_id", userID, "target_id", targetID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User blocked",
	})
}

// Unblock removes the authenticated user's block of the target.
func (s *Server) Unblock(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := s.graphService.Unblock(c.UserContext(), currentUserID(c), targetID); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User unblocked",
	})
}
