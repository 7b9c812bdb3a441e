// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"warbler/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumMessages int
	ShouldClean bool
}

// Seeder populates the database with generated social data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder returns a seeder over the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll deletes all seeded data in dependency order.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Like{}, &models.Follow{}, &models.Block{},
		&models.Message{}, &models.User{},
	} {
		if err := s.db.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", model, err)
		}
	}
	return nil
}

// Seed populates the database with test data.
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Seeding %d users and %d messages...", opts.NumUsers, opts.NumMessages)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	if err := s.seedGraph(users); err != nil {
		return err
	}
	messages, err := s.seedMessages(users, opts.NumMessages)
	if err != nil {
		return err
	}
	return s.seedLikes(users, messages)
}

// seedUsers creates users with a shared password for easy local login.
func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	// One bcrypt hash shared across seed users keeps seeding fast.
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		if len(username) > 30 {
			username = username[:30]
		}
		user := models.User{
			Username:       username,
			Email:          fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Password:       string(hash),
			Bio:            gofakeit.Sentence(8),
			Location:       gofakeit.City(),
			ImageURL:       models.DefaultImageURL,
			HeaderImageURL: models.DefaultHeaderImageURL,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users (password: password123)", len(users))
	return users, nil
}

// seedGraph creates follow edges and a handful of blocks.
func (s *Seeder) seedGraph(users []models.User) error {
	if len(users) < 2 {
		return nil
	}

	follows := 0
	for _, u := range users {
		// Each user follows roughly a quarter of the others.
		for _, other := range users {
			if other.ID == u.ID || rand.Intn(4) != 0 {
				continue
			}
			follow := models.Follow{FollowerID: u.ID, FolloweeID: other.ID}
			if err := s.db.Create(&follow).Error; err != nil {
				return err
			}
			follows++
		}
	}

	blocks := 0
	for i := 0; i < len(users)/10; i++ {
		blocker := users[rand.Intn(len(users))]
		blocked := users[rand.Intn(len(users))]
		if blocker.ID == blocked.ID {
			continue
		}
		block := models.Block{BlockerID: blocker.ID, BlockedID: blocked.ID}
		if err := s.db.Where(&block).FirstOrCreate(&block).Error; err != nil {
			return err
		}
		// A block severs the blocked user's follow of the blocker.
		if err := s.db.Where("follower_id = ? AND followee_id = ?",
			blocked.ID, blocker.ID).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		blocks++
	}

	log.Printf("Created %d follows and %d blocks", follows, blocks)
	return nil
}

// seedMessages creates messages trimmed to the length limit.
func (s *Seeder) seedMessages(users []models.User, n int) ([]models.Message, error) {
	if len(users) == 0 {
		return nil, nil
	}

	messages := make([]models.Message, 0, n)
	for i := 0; i < n; i++ {
		text := gofakeit.Sentence(gofakeit.Number(3, 18))
		if runes := []rune(text); len(runes) > models.MaxMessageLength {
			text = string(runes[:models.MaxMessageLength])
		}
		message := models.Message{
			Text:   text,
			UserID: users[rand.Intn(len(users))].ID,
		}
		if err := s.db.Create(&message).Error; err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	log.Printf("Created %d messages", len(messages))
	return messages, nil
}

// seedLikes sprinkles likes across messages.
func (s *Seeder) seedLikes(users []models.User, messages []models.Message) error {
	if len(users) == 0 || len(messages) == 0 {
		return nil
	}

	likes := 0
	for _, m := range messages {
		for _, u := range users {
			if u.ID == m.UserID || rand.Intn(6) != 0 {
				continue
			}
			like := models.Like{UserID: u.ID, MessageID: m.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return err
			}
			likes++
		}
	}
	log.Printf("Created %d likes", likes)
	return nil
}
