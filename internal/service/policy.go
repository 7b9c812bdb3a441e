// Package service implements business logic on top of the repositories.
package service

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/repository"
)

// Policy centralizes visibility and authorization decisions. Every read path
// that returns another user's data, profile or content consults it, so the
// blocked-visibility rule cannot be missed at individual call sites.
//
// A viewer blocked by the target receives a not-found answer, never a
// forbidden one: confirming that hidden content exists would defeat the block.
type Policy struct {
	userRepo  repository.UserRepository
	graphRepo repository.GraphRepository
}

// NewPolicy returns a new access policy over the given stores.
func NewPolicy(userRepo repository.UserRepository, graphRepo repository.GraphRepository) *Policy {
	return &Policy{userRepo: userRepo, graphRepo: graphRepo}
}

// VisibleUser resolves the target user for the viewer, or a not-found error
// if the target does not exist or has blocked the viewer.
func (p *Policy) VisibleUser(ctx context.Context, viewerID, targetID uint) (*models.User, error) {
	user, err := p.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if viewerID != 0 && viewerID != targetID {
		blocked, err := p.graphRepo.IsBlocking(ctx, targetID, viewerID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, models.NewNotFoundError("User", targetID)
		}
	}

	return user, nil
}

// VisibleMessage resolves a message for the viewer, hiding messages whose
// author has blocked the viewer.
func (p *Policy) VisibleMessage(ctx context.Context, viewerID uint, msgRepo repository.MessageRepository, messageID uint) (*models.Message, error) {
	message, err := msgRepo.GetByID(ctx, messageID, viewerID)
	if err != nil {
		return nil, err
	}

	if viewerID != 0 && viewerID != message.UserID {
		blocked, err := p.graphRepo.IsBlocking(ctx, message.UserID, viewerID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, models.NewNotFoundError("Message", messageID)
		}
	}

	return message, nil
}

// BlockerIDs returns the IDs of users who have blocked the viewer, for use
// as an exclusion filter in listings and search.
func (p *Policy) BlockerIDs(ctx context.Context, viewerID uint) ([]uint, error) {
	if viewerID == 0 {
		return nil, nil
	}
	return p.graphRepo.BlockerIDs(ctx, viewerID)
}

// CanModifyMessage reports whether the requester owns the message. Message
// deletion is owner-only.
func (p *Policy) CanModifyMessage(requesterID uint, message *models.Message) bool {
	return requesterID != 0 && requesterID == message.UserID
}
