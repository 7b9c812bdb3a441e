package service

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/repository"
)

// GraphService provides follow and block operations over the social graph.
type GraphService struct {
	graphRepo repository.GraphRepository
	policy    *Policy
}

// NewGraphService returns a new GraphService.
func NewGraphService(graphRepo repository.GraphRepository, policy *Policy) *GraphService {
	return &GraphService{graphRepo: graphRepo, policy: policy}
}

// Follow makes userID follow targetID. Re-follow is a no-op.
func (s *GraphService) Follow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.policy.VisibleUser(ctx, userID, targetID); err != nil {
		return err
	}
	return s.graphRepo.CreateFollow(ctx, userID, targetID)
}

// Unfollow removes the follow edge if present.
func (s *GraphService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if _, err := s.policy.VisibleUser(ctx, userID, targetID); err != nil {
		return err
	}
	return s.graphRepo.DeleteFollow(ctx, userID, targetID)
}

// Block makes userID block targetID, severing the target's follow on the
// blocker. The blocker's own follow of the target is left intact.
func (s *GraphService) Block(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("You cannot block yourself")
	}
	if _, err := s.policy.VisibleUser(ctx, userID, targetID); err != nil {
		return err
	}
	return s.graphRepo.CreateBlock(ctx, userID, targetID)
}

// Unblock removes the block edge if present.
func (s *GraphService) Unblock(ctx context.Context, userID, targetID uint) error {
	if _, err := s.policy.VisibleUser(ctx, userID, targetID); err != nil {
		return err
	}
	return s.graphRepo.DeleteBlock(ctx, userID, targetID)
}

// IsFollowing reports whether a follows b.
func (s *GraphService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.graphRepo.IsFollowing(ctx, a, b)
}

// IsFollowedBy reports whether b follows a.
func (s *GraphService) IsFollowedBy(ctx context.Context, a, b uint) (bool, error) {
	return s.graphRepo.IsFollowing(ctx, b, a)
}

// Following lists the users targetID follows, if the target is visible to
// the viewer.
func (s *GraphService) Following(ctx context.Context, viewerID, targetID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.policy.VisibleUser(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.graphRepo.Following(ctx, targetID, limit, offset)
}

// Followers lists the users following targetID, if the target is visible to
// the viewer.
func (s *GraphService) Followers(ctx context.Context, viewerID, targetID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.policy.VisibleUser(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.graphRepo.Followers(ctx, targetID, limit, offset)
}
