package service

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/validation"
)

// HomeTimelineLimit caps the home feed at the most recent entries.
const HomeTimelineLimit = 100

// MessageService provides posting, deletion, timelines and like toggling.
type MessageService struct {
	messageRepo repository.MessageRepository
	graphRepo   repository.GraphRepository
	policy      *Policy
}

// NewMessageService returns a new MessageService.
func NewMessageService(messageRepo repository.MessageRepository, graphRepo repository.GraphRepository, policy *Policy) *MessageService {
	return &MessageService{messageRepo: messageRepo, graphRepo: graphRepo, policy: policy}
}

// Post creates a new message owned by userID.
func (s *MessageService) Post(ctx context.Context, userID uint, text string) (*models.Message, error) {
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	message := &models.Message{Text: text, UserID: userID}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// GetMessage resolves a message through the access policy.
func (s *MessageService) GetMessage(ctx context.Context, viewerID, messageID uint) (*models.Message, error) {
	return s.policy.VisibleMessage(ctx, viewerID, s.messageRepo, messageID)
}

// Delete removes a message. Only the owner may delete it.
func (s *MessageService) Delete(ctx context.Context, requesterID, messageID uint) error {
	message, err := s.policy.VisibleMessage(ctx, requesterID, s.messageRepo, messageID)
	if err != nil {
		return err
	}
	if !s.policy.CanModifyMessage(requesterID, message) {
		return models.NewUnauthorizedError("Access unauthorized")
	}
	return s.messageRepo.Delete(ctx, messageID)
}

// HomeTimeline returns the 100 most recent messages authored by the user or
// anyone the user follows, newest first. Anonymous viewers get an empty feed.
func (s *MessageService) HomeTimeline(ctx context.Context, userID uint) ([]*models.Message, error) {
	if userID == 0 {
		return nil, nil
	}

	followingIDs, err := s.graphRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followingIDs, userID)

	return s.messageRepo.Timeline(ctx, authorIDs, HomeTimelineLimit, userID)
}

// UserMessages returns messages authored by targetID, if the target is
// visible to the viewer.
func (s *MessageService) UserMessages(ctx context.Context, viewerID, targetID uint, limit, offset int) ([]*models.Message, error) {
	if _, err := s.policy.VisibleUser(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.messageRepo.ByUser(ctx, targetID, limit, offset, viewerID)
}

// ToggleLike flips the viewer's like on a message and reports the new state.
// Any authenticated viewer not blocked by the author may like.
func (s *MessageService) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	if _, err := s.policy.VisibleMessage(ctx, userID, s.messageRepo, messageID); err != nil {
		return false, err
	}
	return s.messageRepo.ToggleLike(ctx, userID, messageID)
}

// LikedMessages returns the messages targetID has liked, if the target is
// visible to the viewer.
func (s *MessageService) LikedMessages(ctx context.Context, viewerID, targetID uint, limit, offset int) ([]*models.Message, error) {
	if _, err := s.policy.VisibleUser(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.messageRepo.LikedByUser(ctx, targetID, limit, offset)
}
