package server

import (
	"strconv"
	"time"

	"warbler/internal/cache"
	"warbler/internal/featureflags"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type signupRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup handles new user registration
func (s *Server) Signup(c *fiber.Ctx) error {
	if s.featureFlags.Enabled(featureflags.SignupDisabled, 0) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Signups are temporarily disabled",
		})
	}

	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ImageURL:       req.ImageURL,
		HeaderImageURL: req.HeaderImageURL,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	token, csrfToken, err := s.issueSession(c, user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user signed up",
		"user_id", user.ID, "username", user.Username)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":       user,
		"token":      token,
		"csrf_token": csrfToken,
	})
}

// Login authenticates a user and issues a fresh session
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return handleServiceError(c, err)
	}
	if user == nil {
		// Same response for unknown username and wrong password.
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, csrfToken, err := s.issueSession(c, user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged in", "user_id", user.ID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":       user,
		"token":      token,
		"csrf_token": csrfToken,
	})
}

// Logout revokes the current session; its CSRF token stops validating.
func (s *Server) Logout(c *fiber.Ctx) error {
	sessionID := currentSessionID(c)
	if sessionID != "" {
		cache.DestroySession(c.UserContext(), sessionID)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged out",
		"user_id", currentUserID(c))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out",
	})
}

// issueSession mints a JWT with a fresh session ID and the matching CSRF token.
func (s *Server) issueSession(c *fiber.Ctx, userID uint) (token, csrfToken string, err error) {
	sessionID := uuid.NewString()

	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"jti": sessionID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(cache.SessionTTL).Unix(),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", "", err
	}

	cache.RegisterSession(c.UserContext(), sessionID)
	return token, cache.CsrfToken(sessionID), nil
}
