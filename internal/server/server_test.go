package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"auconnect/internal/config"
	"auconnect/internal/models"
	"auconnect/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSecret     = "server-test-secret-0123456789abcdef0123456789"
	testCookieName = "auconnect_session"
)

type stubMedia struct{}

func (stubMedia) PresignRead(_ context.Context, blobName string) (string, error) {
	if blobName == "" {
		return "", models.NewValidationError("blobName is required")
	}
	return "https://media.example.edu/" + blobName + "?sig=abc", nil
}

type testServer struct {
	srv *Server
	db  *gorm.DB
	fx  *testutil.Fixtures
}

func newTestServer(t *testing.T, withRedis bool, media bool) *testServer {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	var rdb *redis.Client
	if withRedis {
		_, rdb = testutil.NewRedis(t)
	}

	cfg := &config.Config{
		JWTSecret:      testSecret,
		AuthCookieName: testCookieName,
		Env:            "test",
		AppURL:         "https://connect.example.edu",
		EmailWorkers:   1,
		EmailQueueSize: 8,
	}
	deps := Deps{DB: db, Redis: rdb}
	if media {
		deps.Media = stubMedia{}
	}

	srv, err := NewServerWithDeps(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.tasks.Shutdown(ctx)
	})

	return &testServer{srv: srv, db: db, fx: testutil.NewFixtures(t, db)}
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

// do sends an authenticated request as userID (0 for anonymous) and decodes
// the JSON response into out when out is non-nil.
func (ts *testServer) do(t *testing.T, method, path string, userID uint, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}

	resp, err := ts.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func api(format string, args ...any) string {
	return APIPrefix + fmt.Sprintf(format, args...)
}

func TestHealthChecks(t *testing.T) {
	ts := newTestServer(t, true, false)

	var live map[string]any
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/live", 0, nil, &live))
	assert.Equal(t, "up", live["status"])

	var ready map[string]any
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health/ready", 0, nil, &ready))
	assert.Equal(t, "healthy", ready["status"])

	degraded := newTestServer(t, false, false)
	ready = nil
	assert.Equal(t, http.StatusOK, degraded.do(t, http.MethodGet, "/health/ready", 0, nil, &ready))
	assert.Equal(t, "degraded", ready["status"])
}

func TestAPIRequiresAuthentication(t *testing.T) {
	ts := newTestServer(t, false, false)
	post := ts.fx.Post(ts.fx.User("alice"))

	var errResp models.ErrorResponse
	status := ts.do(t, http.MethodGet, api("/posts/%d/comments", post.ID), 0, nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthorized, errResp.Code)
}

func TestSessionCookieAuthenticates(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	post := ts.fx.Post(alice)

	req := httptest.NewRequest(http.MethodGet, api("/posts/%d", post.ID), nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: tokenFor(t, alice.ID)})
	resp, err := ts.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateCommentEndpoint(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	bob := ts.fx.User("bob")
	post := ts.fx.Post(alice)

	var created models.Comment
	status := ts.do(t, http.MethodPost, api("/posts/%d/comments", post.ID), bob.ID,
		CreateCommentRequest{Content: "  nice post  "}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "nice post", created.Content)
	assert.Equal(t, "bob", created.Username)
	assert.Equal(t, bob.ProfilePic, created.ProfilePic)
	assert.Nil(t, created.ParentID)

	var reply models.Comment
	status = ts.do(t, http.MethodPost, api("/posts/%d/comments", post.ID), alice.ID,
		CreateCommentRequest{Content: "thanks", ParentID: &created.ID}, &reply)
	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, created.ID, *reply.ParentID)

	var stored models.Post
	require.NoError(t, ts.db.First(&stored, post.ID).Error)
	assert.Equal(t, int64(2), stored.CommentCount)

	var notes []models.Notification
	require.NoError(t, ts.db.Order("id").Find(&notes).Error)
	require.Len(t, notes, 2)
	assert.Equal(t, alice.ID, notes[0].UserID)
	assert.Equal(t, models.NotificationPostCommented, notes[0].Type)
	assert.Equal(t, bob.ID, notes[1].UserID)
	assert.Equal(t, models.NotificationCommentReplied, notes[1].Type)
}

func TestCreateCommentEndpoint_Errors(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	post := ts.fx.Post(alice)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad post id", api("/posts/abc/comments"), CreateCommentRequest{Content: "x"}, http.StatusBadRequest, models.CodeValidation},
		{"missing content", api("/posts/%d/comments", post.ID), CreateCommentRequest{}, http.StatusBadRequest, models.CodeValidation},
		{"whitespace content", api("/posts/%d/comments", post.ID), CreateCommentRequest{Content: "   "}, http.StatusBadRequest, models.CodeValidation},
		{"unknown post", api("/posts/%d/comments", post.ID+100), CreateCommentRequest{Content: "x"}, http.StatusNotFound, models.CodeNotFound},
		{"unknown parent", api("/posts/%d/comments", post.ID), CreateCommentRequest{Content: "x", ParentID: uintPtr(999)}, http.StatusNotFound, models.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp models.ErrorResponse
			status := ts.do(t, http.MethodPost, tt.path, alice.ID, tt.body, &errResp)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, errResp.Code)
		})
	}

	var errResp models.ErrorResponse
	ts.do(t, http.MethodPost, api("/posts/abc/comments"), alice.ID, CreateCommentRequest{Content: "x"}, &errResp)
	assert.Equal(t, "Invalid post ID", errResp.Error)
}

func TestListCommentsEndpoint_Paginates(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	post := ts.fx.Post(alice)
	c1 := ts.fx.Comment(post, alice, nil)
	c2 := ts.fx.Comment(post, alice, nil)
	c3 := ts.fx.Comment(post, alice, nil)
	ts.fx.Comment(post, alice, c3)

	var first CommentListResponse
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodGet, api("/posts/%d/comments?limit=2", post.ID), alice.ID, nil, &first))
	require.Len(t, first.Comments, 2)
	assert.Equal(t, c3.ID, first.Comments[0].ID)
	assert.Equal(t, int64(1), first.Comments[0].ReplyCount)
	assert.Equal(t, c2.ID, first.Comments[1].ID)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, c2.ID, *first.NextCursor)

	var second CommentListResponse
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodGet, api("/posts/%d/comments?limit=2&cursor=%d", post.ID, *first.NextCursor), alice.ID, nil, &second))
	require.Len(t, second.Comments, 1)
	assert.Equal(t, c1.ID, second.Comments[0].ID)
	assert.Nil(t, second.NextCursor)

	var errResp models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodGet, api("/posts/%d/comments?cursor=abc", post.ID), alice.ID, nil, &errResp))
	assert.Equal(t, "Invalid cursor", errResp.Error)
}

func TestListRepliesEndpoint(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	post := ts.fx.Post(alice)
	parent := ts.fx.Comment(post, alice, nil)
	r1 := ts.fx.Comment(post, alice, parent)
	r2 := ts.fx.Comment(post, alice, parent)

	var page ReplyListResponse
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodGet, api("/posts/%d/comments/%d/replies", post.ID, parent.ID), alice.ID, nil, &page))
	require.Len(t, page.Replies, 2)
	assert.Equal(t, r1.ID, page.Replies[0].ID)
	assert.Equal(t, r2.ID, page.Replies[1].ID)
	assert.Nil(t, page.NextCursor)

	other := ts.fx.Post(alice)
	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodGet, api("/posts/%d/comments/%d/replies", other.ID, parent.ID), alice.ID, nil, nil))
}

func TestDeleteCommentEndpoint(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	bob := ts.fx.User("bob")
	post := ts.fx.Post(alice)
	comment := ts.fx.Comment(post, bob, nil)

	var errResp models.ErrorResponse
	assert.Equal(t, http.StatusForbidden,
		ts.do(t, http.MethodDelete, api("/posts/%d/comments/%d", post.ID, comment.ID), alice.ID, nil, &errResp))
	assert.Equal(t, models.CodeForbidden, errResp.Code)

	var ok map[string]bool
	assert.Equal(t, http.StatusOK,
		ts.do(t, http.MethodDelete, api("/posts/%d/comments/%d", post.ID, comment.ID), bob.ID, nil, &ok))
	assert.True(t, ok["success"])

	var page CommentListResponse
	ts.do(t, http.MethodGet, api("/posts/%d/comments", post.ID), alice.ID, nil, &page)
	assert.Empty(t, page.Comments)
}

func TestSharePostEndpoint(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	bob := ts.fx.User("bob")
	carol := ts.fx.User("carol")
	post := ts.fx.Post(alice)

	var resp struct {
		Success    bool  `json:"success"`
		ShareCount int64 `json:"shareCount"`
	}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, api("/posts/%d/share", post.ID), bob.ID, nil, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.ShareCount)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, api("/posts/%d/share", post.ID), bob.ID,
		SharePostRequest{SharedByUserID: &carol.ID}, &resp))
	assert.Equal(t, int64(2), resp.ShareCount)

	var notes []models.Notification
	require.NoError(t, ts.db.Where("user_id = ?", alice.ID).Order("id").Find(&notes).Error)
	require.Len(t, notes, 2)
	assert.Equal(t, bob.ID, notes[0].FromUserID)
	assert.Equal(t, carol.ID, notes[1].FromUserID)
	assert.Equal(t, models.NotificationPostShared, notes[1].Type)

	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodPost, api("/posts/%d/share", post.ID+50), bob.ID, nil, nil))
}

func TestNotificationEndpoints(t *testing.T) {
	ts := newTestServer(t, true, false)
	alice := ts.fx.User("alice")
	bob := ts.fx.User("bob")
	post := ts.fx.Post(alice)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, api("/posts/%d/comments", post.ID), bob.ID,
			CreateCommentRequest{Content: fmt.Sprintf("comment %d", i)}, nil))
	}

	var views []models.NotificationView
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, api("/notifications"), alice.ID, nil, &views))
	require.Len(t, views, 2)
	assert.Equal(t, "bob", views[0].FromUser.Username)
	assert.False(t, views[0].IsRead)

	var count map[string]int64
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, api("/notifications/unread-count"), alice.ID, nil, &count))
	assert.Equal(t, int64(2), count["count"])

	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodPatch, api("/notifications/%d", views[0].ID), bob.ID, nil, nil))
	assert.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPatch, api("/notifications/%d", views[0].ID), alice.ID, nil, nil))

	ts.do(t, http.MethodGet, api("/notifications/unread-count"), alice.ID, nil, &count)
	assert.Equal(t, int64(1), count["count"])

	var all map[string]any
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPatch, api("/notifications/mark-all-read"), alice.ID, nil, &all))
	assert.Equal(t, true, all["success"])

	ts.do(t, http.MethodGet, api("/notifications/unread-count"), alice.ID, nil, &count)
	assert.Equal(t, int64(0), count["count"])
}

func TestConnectionEndpoints(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	bob := ts.fx.User("bob")

	var conn models.Connection
	require.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, api("/connections/%d", bob.ID), alice.ID, nil, &conn))
	assert.Equal(t, models.ConnectionStatusPending, conn.Status)

	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPost, api("/connections/%d", bob.ID), alice.ID, nil, nil))
	assert.Equal(t, http.StatusForbidden,
		ts.do(t, http.MethodPost, api("/connections/requests/%d/accept", conn.ID), alice.ID, nil, nil))

	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodPost, api("/connections/requests/%d/accept", conn.ID), bob.ID, nil, &conn))
	assert.Equal(t, models.ConnectionStatusAccepted, conn.Status)

	var types []models.NotificationType
	require.NoError(t, ts.db.Model(&models.Notification{}).Order("id").Pluck("type", &types).Error)
	assert.Equal(t, []models.NotificationType{
		models.NotificationConnectionRequest,
		models.NotificationConnectionAccepted,
	}, types)
}

func TestApplyToJobEndpoint(t *testing.T) {
	ts := newTestServer(t, false, false)
	recruiter := ts.fx.User("recruiter")
	bob := ts.fx.User("bob")
	post := ts.fx.Post(recruiter)
	job := ts.fx.JobPost(post)

	salary := int64(30000)
	var resp ApplyToJobResponse
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, api("/jobs/%d/apply", job.ID), bob.ID,
		ApplyToJobRequest{ResumeLetter: "Hello", ExpectedSalary: &salary}, &resp))
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.ApplicationID)

	var errResp models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPost, api("/jobs/%d/apply", job.ID), bob.ID, nil, &errResp))
	assert.Equal(t, "Already applied", errResp.Error)

	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodPost, api("/jobs/%d/apply", job.ID+50), bob.ID, nil, nil))
	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPost, api("/jobs/abc/apply"), bob.ID, nil, nil))

	var views []models.NotificationView
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, api("/notifications"), recruiter.ID, nil, &views))
	require.Len(t, views, 1)
	assert.Equal(t, models.NotificationJobApplication, views[0].Type)
	require.NotNil(t, views[0].EntityID)
	assert.Equal(t, post.ID, *views[0].EntityID)
	assert.Equal(t, "bob", views[0].FromUser.Username)
}

func TestListUserPostsEndpoint(t *testing.T) {
	ts := newTestServer(t, false, false)
	alice := ts.fx.User("alice")
	bob := ts.fx.User("bob")
	older := ts.fx.Post(alice)
	newer := ts.fx.Post(alice)

	var page PostListResponse
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodGet, api("/users/%d/posts?limit=1", alice.ID), bob.ID, nil, &page))
	require.Len(t, page.Posts, 1)
	assert.Equal(t, newer.ID, page.Posts[0].ID)
	assert.Equal(t, "alice", page.Posts[0].Username)
	require.NotNil(t, page.NextCursor)

	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodGet, api("/users/%d/posts?limit=1&cursor=%d", alice.ID, *page.NextCursor), bob.ID, nil, &page))
	require.Len(t, page.Posts, 1)
	assert.Equal(t, older.ID, page.Posts[0].ID)
	assert.Nil(t, page.NextCursor)

	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodGet, api("/users/%d/posts", bob.ID+50), bob.ID, nil, nil))
}

func TestFetchMediaEndpoint(t *testing.T) {
	unconfigured := newTestServer(t, false, false)
	bob := unconfigured.fx.User("bob").ID
	assert.Equal(t, http.StatusServiceUnavailable,
		unconfigured.do(t, http.MethodGet, api("/fetch-media?blobName=a.png"), bob, nil, nil))

	ts := newTestServer(t, false, true)
	alice := ts.fx.User("alice").ID
	var resp map[string]string
	require.Equal(t, http.StatusOK,
		ts.do(t, http.MethodGet, api("/fetch-media?blobName=posts/1/a.png"), alice, nil, &resp))
	assert.Equal(t, "https://media.example.edu/posts/1/a.png?sig=abc", resp["url"])

	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodGet, api("/fetch-media"), alice, nil, nil))
}

func TestWebsocketEndpointRequiresUpgrade(t *testing.T) {
	ts := newTestServer(t, true, false)
	alice := ts.fx.User("alice")
	assert.Equal(t, http.StatusUpgradeRequired,
		ts.do(t, http.MethodGet, api("/ws"), alice.ID, nil, nil))

	noRedis := newTestServer(t, false, false)
	bob := noRedis.fx.User("bob")
	assert.Equal(t, http.StatusServiceUnavailable,
		noRedis.do(t, http.MethodGet, api("/ws"), bob.ID, nil, nil))
}

func uintPtr(v uint) *uint { return &v }
