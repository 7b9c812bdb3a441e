package service

import (
	"context"
	"fmt"
	"testing"

	"warbler/internal/cache"
	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Integration tests over the real repositories against in-memory sqlite.

type testEnv struct {
	db       *gorm.DB
	users    *UserService
	graph    *GraphService
	messages *MessageService
}

func setupServiceTestDB(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	graphRepo := repository.NewGraphRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	policy := NewPolicy(userRepo, graphRepo)

	return &testEnv{
		db:       db,
		users:    NewUserService(userRepo, policy),
		graph:    NewGraphService(graphRepo, policy),
		messages: NewMessageService(messageRepo, graphRepo, policy),
	}
}

func (e *testEnv) mustSignup(t *testing.T, name string) *models.User {
	t.Helper()
	user, err := e.users.Signup(context.Background(), SignupInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("signup %s: %v", name, err)
	}
	return user
}

func TestAccountDeletionCascades(t *testing.T) {
	env := setupServiceTestDB(t)
	ctx := context.Background()

	alice := env.mustSignup(t, "alice")
	bob := env.mustSignup(t, "bob")

	// Alice posts, follows bob, blocks bob; bob likes her message.
	msg, err := env.messages.Post(ctx, alice.ID, "first chirp")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := env.graph.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := env.graph.Follow(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("follow back: %v", err)
	}
	if _, err := env.messages.ToggleLike(ctx, bob.ID, msg.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := env.graph.Block(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("block: %v", err)
	}

	if err := env.users.DeleteAccount(ctx, alice.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	counts := map[string]interface{}{
		"messages": &models.Message{},
		"follows":  &models.Follow{},
		"blocks":   &models.Block{},
		"likes":    &models.Like{},
	}
	for name, model := range counts {
		var n int64
		if err := env.db.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if n != 0 {
			t.Fatalf("expected no %s after cascade, found %d", name, n)
		}
	}

	_, err = env.users.GetUser(ctx, 0, alice.ID)
	if models.ErrorCode(err) != models.CodeNotFound {
		t.Fatalf("deleted user still resolves: %v", err)
	}
}

func TestDuplicateSignupLeavesSingleRow(t *testing.T) {
	env := setupServiceTestDB(t)
	ctx := context.Background()

	env.mustSignup(t, "alice")
	_, err := env.users.Signup(ctx, SignupInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret1",
	})
	if models.ErrorCode(err) != models.CodeConflict {
		t.Fatalf("duplicate username: expected conflict, got %v", err)
	}

	_, err = env.users.Signup(ctx, SignupInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "secret1",
	})
	if models.ErrorCode(err) != models.CodeConflict {
		t.Fatalf("duplicate email: expected conflict, got %v", err)
	}

	var n int64
	env.db.Model(&models.User{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected 1 user row, found %d", n)
	}
}

func installMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

func TestUserReadsServeFromCache(t *testing.T) {
	installMiniredis(t)
	env := setupServiceTestDB(t)
	ctx := context.Background()

	alice := env.mustSignup(t, "alice")
	if _, err := env.users.GetUser(ctx, 0, alice.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	// Change the row behind the cache's back; the warm entry must win until
	// it is invalidated.
	if err := env.db.Model(&models.User{}).Where("id = ?", alice.ID).
		Update("bio", "changed directly").Error; err != nil {
		t.Fatalf("direct update: %v", err)
	}

	cached, err := env.users.GetUser(ctx, 0, alice.ID)
	if err != nil {
		t.Fatalf("cached read: %v", err)
	}
	if cached.Bio == "changed directly" {
		t.Fatal("read bypassed the cache")
	}

	cache.InvalidateUser(ctx, alice.ID)
	fresh, err := env.users.GetUser(ctx, 0, alice.ID)
	if err != nil {
		t.Fatalf("fresh read: %v", err)
	}
	if fresh.Bio != "changed directly" {
		t.Fatalf("invalidation did not take: %q", fresh.Bio)
	}
}

func TestProfileUpdateWithWarmCacheKeepsPasswordHash(t *testing.T) {
	installMiniredis(t)
	env := setupServiceTestDB(t)
	ctx := context.Background()

	alice := env.mustSignup(t, "alice")

	// Warm the user cache; the cached JSON never carries the password hash.
	if _, err := env.users.GetUser(ctx, 0, alice.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if _, err := env.users.GetUser(ctx, 0, alice.ID); err != nil {
		t.Fatalf("cached read: %v", err)
	}

	if _, err := env.users.UpdateProfile(ctx, UpdateProfileInput{
		UserID:   alice.ID,
		Bio:      "still locked in",
		Password: "secret1",
	}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	var row models.User
	if err := env.db.First(&row, alice.ID).Error; err != nil {
		t.Fatalf("reload row: %v", err)
	}
	if row.Password == "" {
		t.Fatal("profile edit wiped the stored password hash")
	}
	if row.Bio != "still locked in" {
		t.Fatalf("profile edit did not apply: %q", row.Bio)
	}

	user, err := env.users.Authenticate(ctx, "alice", "secret1")
	if err != nil || user == nil {
		t.Fatalf("login broken after profile edit: (%v, %v)", user, err)
	}
}

func TestBlockSeversOnlyReverseFollow(t *testing.T) {
	env := setupServiceTestDB(t)
	ctx := context.Background()

	alice := env.mustSignup(t, "alice")
	bob := env.mustSignup(t, "bob")

	if err := env.graph.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("alice follows bob: %v", err)
	}
	if err := env.graph.Follow(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("bob follows alice: %v", err)
	}

	// Alice blocks bob: bob's follow of alice goes away, alice's follow stays.
	if err := env.graph.Block(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("block: %v", err)
	}

	stillFollowing, err := env.graph.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil || !stillFollowing {
		t.Fatalf("blocker's own follow must survive: (%v, %v)", stillFollowing, err)
	}
	reverse, err := env.graph.IsFollowing(ctx, bob.ID, alice.ID)
	if err != nil || reverse {
		t.Fatalf("blocked user's follow must be severed: (%v, %v)", reverse, err)
	}

	// Bob now sees alice as nonexistent.
	_, err = env.users.GetUser(ctx, bob.ID, alice.ID)
	if models.ErrorCode(err) != models.CodeNotFound {
		t.Fatalf("blocked viewer must get not found, got %v", err)
	}
}

func TestToggleLikeIsAnInvolution(t *testing.T) {
	env := setupServiceTestDB(t)
	ctx := context.Background()

	alice := env.mustSignup(t, "alice")
	msg, err := env.messages.Post(ctx, alice.ID, "like me")
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	liked, err := env.messages.ToggleLike(ctx, alice.ID, msg.ID)
	if err != nil || !liked {
		t.Fatalf("first toggle should like: (%v, %v)", liked, err)
	}
	liked, err = env.messages.ToggleLike(ctx, alice.ID, msg.ID)
	if err != nil || liked {
		t.Fatalf("second toggle should unlike: (%v, %v)", liked, err)
	}

	var n int64
	env.db.Model(&models.Like{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected no like rows after double toggle, found %d", n)
	}
}

func TestHomeTimelineCapAndOrder(t *testing.T) {
	env := setupServiceTestDB(t)
	ctx := context.Background()

	alice := env.mustSignup(t, "alice")
	bob := env.mustSignup(t, "bob")
	if err := env.graph.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	var lastID uint
	for i := 0; i < HomeTimelineLimit+5; i++ {
		author := alice.ID
		if i%2 == 0 {
			author = bob.ID
		}
		m, err := env.messages.Post(ctx, author, fmt.Sprintf("chirp %d", i))
		if err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
		lastID = m.ID
	}

	feed, err := env.messages.HomeTimeline(ctx, alice.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(feed) != HomeTimelineLimit {
		t.Fatalf("expected %d messages, got %d", HomeTimelineLimit, len(feed))
	}
	if feed[0].ID != lastID {
		t.Fatalf("feed must lead with the newest message: got %d, want %d", feed[0].ID, lastID)
	}
	for i := 1; i < len(feed); i++ {
		if feed[i].ID > feed[i-1].ID {
			t.Fatalf("feed out of order at %d", i)
		}
	}
}

func TestTimelineExcludesStrangers(t *testing.T) {
	env := setupServiceTestDB(t)
	ctx := context.Background()

	alice := env.mustSignup(t, "alice")
	stranger := env.mustSignup(t, "stranger")

	if _, err := env.messages.Post(ctx, stranger.ID, "unrelated"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if _, err := env.messages.Post(ctx, alice.ID, "mine"); err != nil {
		t.Fatalf("post: %v", err)
	}

	feed, err := env.messages.HomeTimeline(ctx, alice.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(feed) != 1 || feed[0].Text != "mine" {
		t.Fatalf("feed must only contain followed authors and self: %+v", feed)
	}
}
