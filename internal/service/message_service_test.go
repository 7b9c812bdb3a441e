package service

import (
	"context"
	"strings"
	"testing"

	"warbler/internal/models"
)

type messageRepoStub struct {
	createFn      func(context.Context, *models.Message) error
	getByIDFn     func(context.Context, uint, uint) (*models.Message, error)
	deleteFn      func(context.Context, uint) error
	timelineFn    func(context.Context, []uint, int, uint) ([]*models.Message, error)
	byUserFn      func(context.Context, uint, int, int, uint) ([]*models.Message, error)
	toggleLikeFn  func(context.Context, uint, uint) (bool, error)
	isLikedFn     func(context.Context, uint, uint) (bool, error)
	likedByUserFn func(context.Context, uint, int, int) ([]*models.Message, error)
}

func (s *messageRepoStub) Create(ctx context.Context, message *models.Message) error {
	return s.createFn(ctx, message)
}
func (s *messageRepoStub) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *messageRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *messageRepoStub) Timeline(ctx context.Context, authorIDs []uint, limit int, currentUserID uint) ([]*models.Message, error) {
	return s.timelineFn(ctx, authorIDs, limit, currentUserID)
}
func (s *messageRepoStub) ByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Message, error) {
	return s.byUserFn(ctx, userID, limit, offset, currentUserID)
}
func (s *messageRepoStub) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.toggleLikeFn(ctx, userID, messageID)
}
func (s *messageRepoStub) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, messageID)
}
func (s *messageRepoStub) LikedByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Message, error) {
	return s.likedByUserFn(ctx, userID, limit, offset)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn: func(context.Context, *models.Message) error { return nil },
		getByIDFn: func(_ context.Context, id uint, _ uint) (*models.Message, error) {
			return &models.Message{ID: id}, nil
		},
		deleteFn:      func(context.Context, uint) error { return nil },
		timelineFn:    func(context.Context, []uint, int, uint) ([]*models.Message, error) { return nil, nil },
		byUserFn:      func(context.Context, uint, int, int, uint) ([]*models.Message, error) { return nil, nil },
		toggleLikeFn:  func(context.Context, uint, uint) (bool, error) { return true, nil },
		isLikedFn:     func(context.Context, uint, uint) (bool, error) { return false, nil },
		likedByUserFn: func(context.Context, uint, int, int) ([]*models.Message, error) { return nil, nil },
	}
}

func newMessageService(msgRepo *messageRepoStub, graph *graphRepoStub) *MessageService {
	return NewMessageService(msgRepo, graph, NewPolicy(noopUserRepo(), graph))
}

func TestMessageServicePostValidation(t *testing.T) {
	svc := newMessageService(noopMessageRepo(), noopGraphRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		ok   bool
	}{
		{name: "valid", text: "chirp", ok: true},
		{name: "exactly 140 runes", text: strings.Repeat("x", 140), ok: true},
		{name: "141 runes", text: strings.Repeat("x", 141), ok: false},
		{name: "blank", text: "   ", ok: false},
		{name: "empty", text: "", ok: false},
		// Length is measured in runes, not bytes.
		{name: "140 multibyte runes", text: strings.Repeat("ü", 140), ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Post(ctx, 1, tt.text)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && models.ErrorCode(err) != models.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestMessageServiceHomeTimelineAnonymousIsEmpty(t *testing.T) {
	msgRepo := noopMessageRepo()
	msgRepo.timelineFn = func(context.Context, []uint, int, uint) ([]*models.Message, error) {
		t.Fatal("anonymous timeline must not hit the store")
		return nil, nil
	}
	svc := newMessageService(msgRepo, noopGraphRepo())

	messages, err := svc.HomeTimeline(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty feed, got %d messages", len(messages))
	}
}

func TestMessageServiceHomeTimelineIncludesSelfAndFollowed(t *testing.T) {
	graph := noopGraphRepo()
	graph.followingIDsFn = func(context.Context, uint) ([]uint, error) { return []uint{2, 3}, nil }

	msgRepo := noopMessageRepo()
	var gotAuthors []uint
	var gotLimit int
	msgRepo.timelineFn = func(_ context.Context, authorIDs []uint, limit int, _ uint) ([]*models.Message, error) {
		gotAuthors = authorIDs
		gotLimit = limit
		return nil, nil
	}
	svc := newMessageService(msgRepo, graph)

	if _, err := svc.HomeTimeline(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != HomeTimelineLimit {
		t.Fatalf("expected limit %d, got %d", HomeTimelineLimit, gotLimit)
	}
	want := map[uint]bool{1: true, 2: true, 3: true}
	if len(gotAuthors) != 3 {
		t.Fatalf("expected 3 authors, got %v", gotAuthors)
	}
	for _, id := range gotAuthors {
		if !want[id] {
			t.Fatalf("unexpected author %d in %v", id, gotAuthors)
		}
	}
}

func TestMessageServiceDeleteIsOwnerOnly(t *testing.T) {
	msgRepo := noopMessageRepo()
	msgRepo.getByIDFn = func(_ context.Context, id uint, _ uint) (*models.Message, error) {
		return &models.Message{ID: id, UserID: 2}, nil
	}
	deleted := false
	msgRepo.deleteFn = func(context.Context, uint) error {
		deleted = true
		return nil
	}
	svc := newMessageService(msgRepo, noopGraphRepo())
	ctx := context.Background()

	err := svc.Delete(ctx, 1, 10)
	if models.ErrorCode(err) != models.CodeUnauthorized {
		t.Fatalf("expected unauthorized for non-owner, got %v", err)
	}
	if deleted {
		t.Fatal("message was deleted by a non-owner")
	}

	if err := svc.Delete(ctx, 2, 10); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if !deleted {
		t.Fatal("owner delete did not reach the store")
	}
}

func TestMessageServiceToggleLikeHiddenMessage(t *testing.T) {
	graph := noopGraphRepo()
	graph.isBlockingFn = func(_ context.Context, blockerID, blockedID uint) (bool, error) {
		return blockerID == 2 && blockedID == 1, nil
	}
	msgRepo := noopMessageRepo()
	msgRepo.getByIDFn = func(_ context.Context, id uint, _ uint) (*models.Message, error) {
		return &models.Message{ID: id, UserID: 2}, nil
	}
	msgRepo.toggleLikeFn = func(context.Context, uint, uint) (bool, error) {
		t.Fatal("like must not be written for a hidden message")
		return false, nil
	}
	svc := newMessageService(msgRepo, graph)

	_, err := svc.ToggleLike(context.Background(), 1, 10)
	if models.ErrorCode(err) != models.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
