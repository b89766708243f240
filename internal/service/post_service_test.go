package service

import (
	"context"
	"testing"

	"auconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_SharePost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.fx.User("alice")
	bob := env.fx.User("bob")
	carol := env.fx.User("carol")
	post := env.fx.Post(alice)
	ctx := context.Background()

	count, err := env.posts.SharePost(ctx, SharePostInput{UserID: bob.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	notes := env.notificationsFor(t, alice.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationPostShared, notes[0].Type)
	assert.Equal(t, bob.ID, notes[0].FromUserID)
	assert.Equal(t, post.ID, *notes[0].EntityID)

	t.Run("credits the shared link owner", func(t *testing.T) {
		count, err := env.posts.SharePost(ctx, SharePostInput{UserID: bob.ID, PostID: post.ID, SharedByUserID: &carol.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		notes := env.notificationsFor(t, alice.ID)
		require.Len(t, notes, 2)
		assert.Equal(t, carol.ID, notes[1].FromUserID)
	})

	t.Run("unknown link owner falls back to requester", func(t *testing.T) {
		_, err := env.posts.SharePost(ctx, SharePostInput{UserID: bob.ID, PostID: post.ID, SharedByUserID: uintPtr(999)})
		require.NoError(t, err)

		notes := env.notificationsFor(t, alice.ID)
		require.Len(t, notes, 3)
		assert.Equal(t, bob.ID, notes[2].FromUserID)
	})

	t.Run("own post is not notified", func(t *testing.T) {
		count, err := env.posts.SharePost(ctx, SharePostInput{UserID: alice.ID, PostID: post.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.Len(t, env.notificationsFor(t, alice.ID), 3)
	})

	t.Run("link owner sharing own post is not notified", func(t *testing.T) {
		_, err := env.posts.SharePost(ctx, SharePostInput{UserID: bob.ID, PostID: post.ID, SharedByUserID: &alice.ID})
		require.NoError(t, err)
		assert.Len(t, env.notificationsFor(t, alice.ID), 3)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := env.posts.SharePost(ctx, SharePostInput{UserID: bob.ID, PostID: 999})
		assertCode(t, models.CodeNotFound, err)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := env.posts.SharePost(ctx, SharePostInput{PostID: post.ID})
		assertCode(t, models.CodeUnauthorized, err)
	})
}

func TestPostService_GetPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.fx.User("alice")
	post := env.fx.Post(alice)

	got, err := env.posts.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "avatars/alice.png", got.ProfilePic)

	_, err = env.posts.GetPost(context.Background(), 999)
	assertCode(t, models.CodeNotFound, err)
}

func TestPostService_ListUserPosts(t *testing.T) {
	env := newTestEnv(t)
	alice := env.fx.User("alice")
	bob := env.fx.User("bob")
	ctx := context.Background()

	var mine []*models.Post
	for i := 0; i < 5; i++ {
		mine = append(mine, env.fx.Post(alice))
	}
	theirs := env.fx.Post(bob)

	first, err := env.posts.ListUserPosts(ctx, ListUserPostsInput{UserID: alice.ID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Posts, 3)
	assert.Equal(t, mine[4].ID, first.Posts[0].ID)
	assert.Equal(t, "alice", first.Posts[0].Username)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, mine[2].ID, *first.NextCursor)

	second, err := env.posts.ListUserPosts(ctx, ListUserPostsInput{UserID: alice.ID, Cursor: first.NextCursor, Limit: 3})
	require.NoError(t, err)
	require.Len(t, second.Posts, 2)
	assert.Equal(t, mine[1].ID, second.Posts[0].ID)
	assert.Equal(t, mine[0].ID, second.Posts[1].ID)
	assert.Nil(t, second.NextCursor)

	_, err = env.posts.ListUserPosts(ctx, ListUserPostsInput{UserID: alice.ID, Cursor: &theirs.ID})
	assertCode(t, models.CodeValidation, err)
	_, err = env.posts.ListUserPosts(ctx, ListUserPostsInput{UserID: alice.ID, Cursor: uintPtr(4242)})
	assertCode(t, models.CodeValidation, err)
	_, err = env.posts.ListUserPosts(ctx, ListUserPostsInput{UserID: 4242})
	assertCode(t, models.CodeNotFound, err)

	empty, err := env.posts.ListUserPosts(ctx, ListUserPostsInput{UserID: env.fx.User("carol").ID})
	require.NoError(t, err)
	assert.Empty(t, empty.Posts)
	assert.NotNil(t, empty.Posts)
	assert.Nil(t, empty.NextCursor)
}
