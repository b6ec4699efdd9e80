package seed

import (
	"fmt"
	"log"

	"agora/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with test data: a user base, a follow mesh
// with pending and accepted edges, geotagged photo posts, and votes with
// consistent reputation totals.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory, err := NewFactory(db)
	if err != nil {
		return err
	}

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	edges, err := createFollowMesh(factory, users)
	if err != nil {
		return fmt.Errorf("failed to create follow mesh: %w", err)
	}
	log.Printf("✓ %d follow edges created", edges)

	posts, err := createPosts(factory, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	votes, err := createVotes(factory, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create votes: %w", err)
	}
	log.Printf("✓ %d votes created", votes)

	if err := recomputeReputation(db); err != nil {
		return fmt.Errorf("failed to recompute reputation: %w", err)
	}
	log.Println("✓ reputation totals recomputed")

	return nil
}

// ClearAll removes all seedable data. Deletion order respects foreign keys.
func ClearAll(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Vote{},
		&models.Photo{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createFollowMesh wires each user to a handful of others. Roughly a quarter
// of the edges stay pending so the request inbox has content.
func createFollowMesh(factory *Factory, users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	edges := 0
	for _, follower := range users {
		targets := factory.rng.Intn(5) + 1
		for j := 0; j < targets; j++ {
			following := users[factory.rng.Intn(len(users))]
			if following.ID == follower.ID {
				continue
			}

			status := models.FollowStatusAccepted
			if factory.rng.Intn(4) == 0 {
				status = models.FollowStatusPending
			}
			if err := factory.CreateFollow(follower, following, status); err != nil {
				// The ordered pair already exists; skip duplicates.
				continue
			}
			edges++
		}
	}
	return edges, nil
}

func createPosts(factory *Factory, users []*models.User, count int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[factory.rng.Intn(len(users))]
		post, err := factory.CreatePost(author)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// createVotes lets each user vote on a sample of posts. The unique
// (user, post) index silently drops repeat picks.
func createVotes(factory *Factory, users []*models.User, posts []*models.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	votes := 0
	for _, user := range users {
		picks := factory.rng.Intn(len(posts)/2 + 1)
		for j := 0; j < picks; j++ {
			post := posts[factory.rng.Intn(len(posts))]
			voteType := models.VoteTypeUp
			if factory.rng.Intn(4) == 0 {
				voteType = models.VoteTypeDown
			}
			if err := factory.CreateVote(user, post, voteType); err != nil {
				continue
			}
			votes++
		}
	}
	return votes, nil
}

// recomputeReputation overwrites post and author reputation from the votes
// table. A post counts every vote; an author counts only upvotes from other
// users on their posts.
func recomputeReputation(db *gorm.DB) error {
	if err := db.Exec(`
		UPDATE posts SET reputation = COALESCE((
			SELECT SUM(CASE votes.type WHEN 'UP' THEN 1 ELSE -1 END)
			FROM votes WHERE votes.post_id = posts.id
		), 0)`).Error; err != nil {
		return err
	}

	return db.Exec(`
		UPDATE users SET reputation = COALESCE((
			SELECT COUNT(*)
			FROM votes
			JOIN posts ON posts.id = votes.post_id
			WHERE posts.user_id = users.id
			  AND votes.type = 'UP'
			  AND votes.user_id <> users.id
		), 0)`).Error
}
