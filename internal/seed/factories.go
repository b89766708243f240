// Package seed populates a development database with realistic AU Connect
// data: members, posts, job postings and applications, comment threads and
// connections.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auconnect/internal/models"
	"auconnect/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them through the repositories,
// so counters stay consistent with what the API would produce.
type Factory struct {
	faker       *gofakeit.Faker
	users       repository.UserRepository
	posts       repository.PostRepository
	jobs        repository.JobPostRepository
	apps        repository.JobApplicationRepository
	comments    repository.CommentRepository
	connections repository.ConnectionRepository
	notifs      repository.NotificationRepository
	now         time.Time
}

// NewFactory creates a Factory bound to db. A fixed seed gives reproducible data.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{
		faker:       gofakeit.New(seed),
		users:       repository.NewUserRepository(db),
		posts:       repository.NewPostRepository(db),
		jobs:        repository.NewJobPostRepository(db),
		apps:        repository.NewJobApplicationRepository(db),
		comments:    repository.NewCommentRepository(db),
		connections: repository.NewConnectionRepository(db),
		notifs:      repository.NewNotificationRepository(db),
		now:         time.Now().UTC(),
	}
}

// CreateUser persists a member with a unique username and email.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	first := strings.ToLower(f.faker.FirstName())
	last := strings.ToLower(f.faker.LastName())
	username := fmt.Sprintf("%s.%s%d", first, last, f.faker.Number(100, 999))

	user := &models.User{
		Username:   username,
		Email:      username + "@connect.example.edu",
		ProfilePic: fmt.Sprintf("avatars/%s.png", f.faker.UUID()),
		Title:      f.faker.JobTitle(),
		About:      f.faker.Sentence(12),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// CreatePost persists a post authored by author, backdated up to 30 days.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		UserID:     author.ID,
		PostType:   models.PostTypeDiscussion,
		Title:      f.faker.Sentence(5),
		Content:    f.faker.Paragraph(1, 3, 12, "\n"),
		Visibility: models.VisibilityEveryone,
		CreatedAt:  f.backdate(30 * 24 * time.Hour),
	}
	if f.faker.Number(0, 3) == 0 {
		post.PostType = models.PostTypeMedia
		post.Media = append(post.Media, models.PostMedia{
			BlobName: fmt.Sprintf("posts/%s.jpg", f.faker.UUID()),
			Type:     "image",
			Name:     f.faker.Word() + ".jpg",
			MimeType: "image/jpeg",
			Size:     int64(f.faker.Number(20_000, 2_000_000)),
		})
	}
	for _, override := range overrides {
		override(post)
	}

	if err := f.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateJobPost attaches a job posting to post.
func (f *Factory) CreateJobPost(ctx context.Context, post *models.Post) (*models.JobPost, error) {
	job := &models.JobPost{
		PostID:             post.ID,
		JobTitle:           f.faker.JobTitle(),
		CompanyName:        f.faker.Company(),
		PositionsAvailable: f.faker.Number(1, 4),
		Status:             models.JobStatusOpen,
	}
	if err := f.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job post: %w", err)
	}
	return job, nil
}

// Apply records applicant's application to job.
func (f *Factory) Apply(ctx context.Context, job *models.JobPost, applicant *models.User) (*models.JobApplication, error) {
	salary := int64(f.faker.Number(20, 90)) * 1000
	app := &models.JobApplication{
		JobPostID:      job.ID,
		ApplicantID:    applicant.ID,
		ResumeLetter:   f.faker.Paragraph(1, 3, 12, " "),
		ExpectedSalary: &salary,
		Availability:   f.faker.RandomString([]string{"Immediately", "Two weeks", "Next semester"}),
		CreatedAt:      f.backdate(7 * 24 * time.Hour),
	}
	if err := f.apps.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create job application: %w", err)
	}
	return app, nil
}

// CreateComment persists a comment or reply and bumps the post's comment count.
func (f *Factory) CreateComment(ctx context.Context, post *models.Post, author *models.User, parent *models.Comment, at time.Time) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		UserID:    author.ID,
		Content:   f.faker.Sentence(f.faker.Number(4, 20)),
		CreatedAt: at,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if err := f.comments.CreateWithCounter(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Connect links two members, accepted or still pending.
func (f *Factory) Connect(ctx context.Context, requester, addressee *models.User, accepted bool) (*models.Connection, error) {
	conn := &models.Connection{
		RequesterID: requester.ID,
		AddresseeID: addressee.ID,
		Status:      models.ConnectionStatusPending,
	}
	if accepted {
		conn.Status = models.ConnectionStatusAccepted
	}
	if err := f.connections.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	return conn, nil
}

// Notify records a notification as the dispatcher would, skipping
// self-notifications. It returns nil when nothing was written.
func (f *Factory) Notify(ctx context.Context, recipientID, fromUserID uint, typ models.NotificationType, entityID uint) (*models.Notification, error) {
	if recipientID == fromUserID {
		return nil, nil
	}
	n := &models.Notification{
		UserID:     recipientID,
		FromUserID: fromUserID,
		Type:       typ,
		EntityID:   &entityID,
		IsRead:     f.faker.Bool(),
	}
	if err := f.notifs.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func (f *Factory) backdate(max time.Duration) time.Time {
	offset := time.Duration(f.faker.Number(0, int(max/time.Minute))) * time.Minute
	return f.now.Add(-offset).Truncate(time.Second)
}
