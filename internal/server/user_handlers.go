package server

import (
	"warbler/internal/cache"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Password       string `json:"password"`
}

// ListUsers handles user search. An optional q parameter filters by username
// substring; users who have blocked the viewer never appear.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	users, err := s.userService.ListUsers(
		c.UserContext(), currentUserID(c), c.Query("q"), limit, offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": users,
	})
}

// ShowUser returns a user's profile along with follow state and messages.
func (s *Server) ShowUser(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	viewerID := currentUserID(c)

	user, err := s.userService.GetUser(c.UserContext(), viewerID, targetID)
	if err != nil {
		return handleServiceError(c, err)
	}

	limit, offset := parsePagination(c)
	messages, err := s.messageService.UserMessages(c.UserContext(), viewerID, targetID, limit, offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	following, err := s.graphService.IsFollowing(c.UserContext(), viewerID, targetID)
	if err != nil {
		return handleServiceError(c, err)
	}
	followedBy, err := s.graphService.IsFollowedBy(c.UserContext(), viewerID, targetID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":        user,
		"messages":    messages,
		"following":   following,
		"followed_by": followedBy,
	})
}

// GetProfile returns the authenticated user's own profile.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": user,
	})
}

// UpdateProfile edits the authenticated user's profile. The current password
// must accompany the edit; a wrong password rejects the whole request.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:         currentUserID(c),
		Username:       req.Username,
		Email:          req.Email,
		Bio:            req.Bio,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
		HeaderImageURL: req.HeaderImageURL,
		Password:       req.Password,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": user,
	})
}

// DeleteAccount removes the authenticated user and all dependent records.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if err := s.userService.DeleteAccount(c.UserContext(), userID); err != nil {
		return handleServiceError(c, err)
	}

	if sessionID := currentSessionID(c); sessionID != "" {
		cache.DestroySession(c.UserContext(), sessionID)
	}

	middleware.Logger.InfoContext(c.UserContext(), "account deleted", "user_id", userID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Account deleted",
	})
}

// ShowFollowing lists the users the target follows.
func (s *Server) ShowFollowing(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	limit, offset := parsePagination(c)

	users, err := s.graphService.Following(c.UserContext(), currentUserID(c), targetID, limit, offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": users,
	})
}

// ShowFollowers lists the users following the target.
func (s *Server) ShowFollowers(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	limit, offset := parsePagination(c)

	users, err := s.graphService.Followers(c.UserContext(), currentUserID(c), targetID, limit, offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"users": users,
	})
}

// ShowUserLikes lists the messages the target has liked.
func (s *Server) ShowUserLikes(c *fiber.Ctx) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err)
	}
	limit, offset := parsePagination(c)

	messages, err := s.messageService.LikedMessages(c.UserContext(), currentUserID(c), targetID, limit, offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"messages": messages,
	})
}
