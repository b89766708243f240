package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"auconnect/internal/email"
	"auconnect/internal/models"
	"auconnect/internal/notifications"
	"auconnect/internal/repository"
	"auconnect/internal/tasks"
	"auconnect/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu         sync.Mutex
	configured bool
	err        error
	sent       []email.Message
}

func (m *fakeMailer) IsConfigured() bool { return m.configured }

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Sent() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.sent...)
}

type sinkReport struct {
	task   string
	reason string
	err    error
}

type recordingSink struct {
	mu      sync.Mutex
	reports []sinkReport
}

func (s *recordingSink) Report(_ context.Context, task, reason string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, sinkReport{task, reason, err})
}

func (s *recordingSink) Reports() []sinkReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkReport(nil), s.reports...)
}

// testEnv wires every service against a private sqlite database and miniredis.
type testEnv struct {
	db       *gorm.DB
	fx       *testutil.Fixtures
	mr       *miniredis.Miniredis
	mailer   *fakeMailer
	sink     *recordingSink
	queue    *tasks.Queue
	notifs   *NotificationService
	comments *CommentService
	posts    *PostService
	conns    *ConnectionService
	jobs     *JobService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	mr, rdb := testutil.NewRedis(t)

	env := &testEnv{
		db:     db,
		fx:     testutil.NewFixtures(t, db),
		mr:     mr,
		mailer: &fakeMailer{configured: true},
		sink:   &recordingSink{},
	}
	env.queue = tasks.NewQueue(1, 16, env.sink)
	t.Cleanup(func() { _ = env.queue.Shutdown(context.Background()) })

	users := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	jobRepo := repository.NewJobPostRepository(db)

	env.notifs = NewNotificationService(NotificationServiceDeps{
		Notifications: repository.NewNotificationRepository(db),
		Users:         users,
		JobPosts:      jobRepo,
		Publisher:     notifications.NewNotifier(rdb),
		Cache:         rdb,
		Mailer:        env.mailer,
		Tasks:         env.queue,
		AppURL:        "https://connect.example.edu/",
	})
	env.comments = NewCommentService(repository.NewCommentRepository(db), postRepo, users, env.notifs)
	env.posts = NewPostService(postRepo, users, env.notifs)
	env.conns = NewConnectionService(repository.NewConnectionRepository(db), users, env.notifs)
	env.jobs = NewJobService(jobRepo, repository.NewJobApplicationRepository(db), users, env.notifs)
	return env
}

// drain waits for queued email tasks to finish.
func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.queue.Shutdown(ctx))
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("id").Find(&rows).Error)
	return rows
}

func assertCode(t *testing.T, code string, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), err.Error())
}

func uintPtr(v uint) *uint { return &v }

// failingNotifier always fails to create notifications.
type failingNotifier struct{ calls int }

func (f *failingNotifier) CreateNotification(context.Context, CreateNotificationInput) (*models.Notification, error) {
	f.calls++
	return nil, models.NewInternalError(assert.AnError)
}
