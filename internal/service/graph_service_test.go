package service

import (
	"context"
	"testing"

	"warbler/internal/models"
)

func TestGraphServiceRejectsSelfEdges(t *testing.T) {
	svc := NewGraphService(noopGraphRepo(), NewPolicy(noopUserRepo(), noopGraphRepo()))
	ctx := context.Background()

	if err := svc.Follow(ctx, 1, 1); models.ErrorCode(err) != models.CodeValidation {
		t.Fatalf("self-follow must be rejected, got %v", err)
	}
	if err := svc.Block(ctx, 1, 1); models.ErrorCode(err) != models.CodeValidation {
		t.Fatalf("self-block must be rejected, got %v", err)
	}
}

func TestGraphServiceFollowBlockedTargetReadsAsNotFound(t *testing.T) {
	graph := noopGraphRepo()
	graph.isBlockingFn = func(_ context.Context, blockerID, blockedID uint) (bool, error) {
		return blockerID == 2 && blockedID == 1, nil
	}
	graph.createFollowFn = func(context.Context, uint, uint) error {
		t.Fatal("follow edge must not be written for a hidden target")
		return nil
	}
	svc := NewGraphService(graph, NewPolicy(noopUserRepo(), graph))

	err := svc.Follow(context.Background(), 1, 2)
	if models.ErrorCode(err) != models.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGraphServiceFollowCreatesEdge(t *testing.T) {
	graph := noopGraphRepo()
	var gotFollower, gotFollowee uint
	graph.createFollowFn = func(_ context.Context, followerID, followeeID uint) error {
		gotFollower, gotFollowee = followerID, followeeID
		return nil
	}
	svc := NewGraphService(graph, NewPolicy(noopUserRepo(), graph))

	if err := svc.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFollower != 1 || gotFollowee != 2 {
		t.Fatalf("edge direction wrong: %d -> %d", gotFollower, gotFollowee)
	}
}
