// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"auconnect/internal/database"
	"auconnect/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewSQLiteDB returns a migrated in-memory database private to t.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	cfg := database.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewRedis starts a miniredis server for t and returns a client for it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// Fixtures creates rows with sensible defaults.
type Fixtures struct {
	t    *testing.T
	db   *gorm.DB
	seq  int
	base time.Time
}

// NewFixtures returns a fixture builder backed by db.
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{
		t:    t,
		db:   db,
		base: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Tick returns a strictly increasing UTC timestamp.
func (f *Fixtures) Tick() time.Time {
	f.seq++
	return f.base.Add(time.Duration(f.seq) * time.Second)
}

// User creates a user named username.
func (f *Fixtures) User(username string) *models.User {
	f.t.Helper()
	u := &models.User{
		Username:   username,
		Email:      username + "@connect.test",
		ProfilePic: "avatars/" + username + ".png",
	}
	f.must(f.db.Create(u).Error)
	return u
}

// Post creates a discussion post authored by author.
func (f *Fixtures) Post(author *models.User) *models.Post {
	f.t.Helper()
	p := &models.Post{
		UserID:     author.ID,
		PostType:   models.PostTypeDiscussion,
		Content:    "post by " + author.Username,
		Visibility: models.VisibilityEveryone,
	}
	f.must(f.db.Create(p).Error)
	return p
}

// Comment creates a comment on post with a strictly increasing timestamp.
func (f *Fixtures) Comment(post *models.Post, author *models.User, parent *models.Comment) *models.Comment {
	f.t.Helper()
	c := &models.Comment{
		PostID:    post.ID,
		UserID:    author.ID,
		Content:   fmt.Sprintf("comment %d", f.seq+1),
		CreatedAt: f.Tick(),
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	f.must(f.db.Create(c).Error)
	return c
}

// JobPost attaches a job posting to post.
func (f *Fixtures) JobPost(post *models.Post) *models.JobPost {
	f.t.Helper()
	j := &models.JobPost{
		PostID:   post.ID,
		JobTitle: "Teaching Assistant",
		Status:   models.JobStatusOpen,
	}
	f.must(f.db.Create(j).Error)
	return j
}

func (f *Fixtures) must(err error) {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("fixture: %v", err)
	}
}
