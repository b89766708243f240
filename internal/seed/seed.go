package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"auconnect/internal/database"
	"auconnect/internal/middleware"
	"auconnect/internal/models"

	"gorm.io/gorm"
)

// Options control how much data Run creates.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	Seed            int64
	Clean           bool
}

// Summary reports what Run created.
type Summary struct {
	Users         int
	Posts         int
	JobPosts      int
	Applications  int
	Comments      int
	Connections   int
	Notifications int
}

// Run seeds db according to opts.
func Run(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.Users < 2 {
		return nil, fmt.Errorf("need at least 2 users, got %d", opts.Users)
	}
	if opts.Clean {
		if err := ClearAll(db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db, opts.Seed)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	// Each member connects with the next one; every third link stays pending.
	for i := 0; i+1 < len(users); i++ {
		accepted := i%3 != 0
		if _, err := f.Connect(ctx, users[i], users[i+1], accepted); err != nil {
			return nil, err
		}
		sum.Connections++

		if err := tally(&sum.Notifications)(f.Notify(ctx, users[i+1].ID, users[i].ID,
			models.NotificationConnectionRequest, users[i].ID)); err != nil {
			return nil, err
		}
		if accepted {
			if err := tally(&sum.Notifications)(f.Notify(ctx, users[i].ID, users[i+1].ID,
				models.NotificationConnectionAccepted, users[i+1].ID)); err != nil {
				return nil, err
			}
		}
	}

	for i := 0; i < opts.Posts; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		post, err := f.CreatePost(ctx, author)
		if err != nil {
			return nil, err
		}
		sum.Posts++

		if i%5 == 0 {
			job, err := f.CreateJobPost(ctx, post)
			if err != nil {
				return nil, err
			}
			sum.JobPosts++

			applicant := users[f.faker.Number(0, len(users)-1)]
			if applicant.ID != author.ID {
				if _, err := f.Apply(ctx, job, applicant); err != nil {
					return nil, err
				}
				sum.Applications++
				// JOB_APPLICATION notifications reference the job post.
				if err := tally(&sum.Notifications)(f.Notify(ctx, author.ID, applicant.ID,
					models.NotificationJobApplication, job.ID)); err != nil {
					return nil, err
				}
			}
		}

		n, notified, err := seedThread(ctx, f, post, users, opts.CommentsPerPost)
		if err != nil {
			return nil, err
		}
		sum.Comments += n
		sum.Notifications += notified
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("job_posts", sum.JobPosts),
		slog.Int("applications", sum.Applications),
		slog.Int("comments", sum.Comments),
		slog.Int("connections", sum.Connections),
		slog.Int("notifications", sum.Notifications),
	)
	return sum, nil
}

// seedThread writes count comments on post and the notifications they would
// trigger. Roughly a third are replies to an earlier top-level comment, always
// created after their parent.
func seedThread(ctx context.Context, f *Factory, post *models.Post, users []*models.User, count int) (int, int, error) {
	at := post.CreatedAt
	notified := 0
	var topLevel []*models.Comment
	for i := 0; i < count; i++ {
		at = at.Add(time.Duration(f.faker.Number(1, 180)) * time.Minute)
		author := users[f.faker.Number(0, len(users)-1)]

		var parent *models.Comment
		if len(topLevel) > 0 && f.faker.Number(0, 2) == 0 {
			parent = topLevel[f.faker.Number(0, len(topLevel)-1)]
		}

		c, err := f.CreateComment(ctx, post, author, parent, at)
		if err != nil {
			return i, notified, err
		}

		recipient, typ := post.UserID, models.NotificationPostCommented
		if parent == nil {
			topLevel = append(topLevel, c)
		} else {
			recipient, typ = parent.UserID, models.NotificationCommentReplied
		}
		if err := tally(&notified)(f.Notify(ctx, recipient, author.ID, typ, post.ID)); err != nil {
			return i + 1, notified, err
		}
	}
	return count, notified, nil
}

// tally returns a helper that increments n when a notification was written.
func tally(n *int) func(*models.Notification, error) error {
	return func(created *models.Notification, err error) error {
		if err != nil {
			return err
		}
		if created != nil {
			*n++
		}
		return nil
	}
}

// ClearAll deletes every seeded row, children first.
func ClearAll(db *gorm.DB) error {
	all := database.Models()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(all[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
