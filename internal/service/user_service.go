package service

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService provides signup, authentication and profile management.
type UserService struct {
	userRepo repository.UserRepository
	policy   *Policy
}

// SignupInput carries the fields accepted at registration.
type SignupInput struct {
	Username       string
	Email          string
	Password       string
	ImageURL       string
	HeaderImageURL string
}

// UpdateProfileInput carries the fields accepted at profile edit.
// Password is the user's current password; the edit is rejected without it.
type UpdateProfileInput struct {
	UserID         uint
	Username       string
	Email          string
	Bio            string
	Location       string
	ImageURL       string
	HeaderImageURL string
	Password       string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, policy *Policy) *UserService {
	return &UserService{userRepo: userRepo, policy: policy}
}

// Signup creates a new user with a hashed credential.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewInvalidCredentialError(err.Error())
	}

	// Friendly pre-check so the common duplicate gets a deterministic answer
	// before the bcrypt work; the unique constraints still arbitrate races.
	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username or email already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       string(hashed),
		ImageURL:       orDefault(in.ImageURL, models.DefaultImageURL),
		HeaderImageURL: orDefault(in.HeaderImageURL, models.DefaultHeaderImageURL),
	}

	// The unique constraints arbitrate concurrent duplicate signups; a
	// violation surfaces as a conflict, not a partial write.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user matching the username and password, or
// (nil, nil) when either is wrong. Callers cannot distinguish an unknown
// username from a bad password, which keeps usernames unenumerable.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a hash comparison so the miss costs the same as a mismatch.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil
	}
	return user, nil
}

// UpdateProfile re-authenticates with the current password, then applies the
// requested changes in a single update.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	current, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	// Authenticate re-reads the row straight from the database. All mutations
	// go onto that copy: a cache-hydrated struct has an empty password hash
	// (the field never serializes) and must not be written back.
	user, err := s.Authenticate(ctx, current.Username, in.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidCredentialError("Invalid credentials")
	}

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = in.Username
	}
	if in.Email != "" && in.Email != user.Email {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = in.Email
	}
	user.Bio = in.Bio
	user.Location = in.Location
	user.ImageURL = orDefault(in.ImageURL, models.DefaultImageURL)
	user.HeaderImageURL = orDefault(in.HeaderImageURL, models.DefaultHeaderImageURL)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user, its messages and every edge referencing it.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.DeleteCascade(ctx, userID)
}

// GetUser resolves a user profile through the access policy.
func (s *UserService) GetUser(ctx context.Context, viewerID, targetID uint) (*models.User, error) {
	return s.policy.VisibleUser(ctx, viewerID, targetID)
}

// ListUsers returns users matching the optional username query, excluding
// anyone who has blocked the viewer.
func (s *UserService) ListUsers(ctx context.Context, viewerID uint, query string, limit, offset int) ([]models.User, error) {
	blockers, err := s.policy.BlockerIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, query, blockers, limit, offset)
}

// dummyHash is a bcrypt hash of an unguessable value, used to equalize
// timing between unknown-user and wrong-password authentication failures.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("warbler-timing-pad"), bcrypt.DefaultCost)
	return h
}()

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
