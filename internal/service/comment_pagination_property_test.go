package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"auconnect/internal/models"
	"auconnect/internal/repository"
	"auconnect/internal/testutil"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Walking every page of a listing visits each live top-level comment exactly
// once, in (createdAt DESC, id DESC) order, even when timestamps collide.
func TestProperty_TopLevelPaginationVisitsEachCommentOnce(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	parameters.MaxSize = 40
	properties := gopter.NewProperties(parameters)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	properties.Property("pages partition the listing", prop.ForAll(
		func(offsets []int, pageSize int) bool {
			db := testutil.NewSQLiteDB(t)
			fx := testutil.NewFixtures(t, db)
			author := fx.User("author")
			post := fx.Post(author)

			expected := make([]models.Comment, 0, len(offsets))
			for _, off := range offsets {
				c := models.Comment{
					PostID:    post.ID,
					UserID:    author.ID,
					Content:   "c",
					CreatedAt: base.Add(time.Duration(off) * time.Second),
				}
				if err := db.Create(&c).Error; err != nil {
					t.Logf("insert: %v", err)
					return false
				}
				expected = append(expected, c)
			}
			sort.Slice(expected, func(i, j int) bool {
				if !expected[i].CreatedAt.Equal(expected[j].CreatedAt) {
					return expected[i].CreatedAt.After(expected[j].CreatedAt)
				}
				return expected[i].ID > expected[j].ID
			})

			svc := NewCommentService(
				repository.NewCommentRepository(db),
				repository.NewPostRepository(db),
				repository.NewUserRepository(db),
				nil,
			)

			var seen []uint
			var cursor *uint
			for pages := 0; pages <= len(offsets)+1; pages++ {
				page, err := svc.ListTopLevelComments(context.Background(), ListCommentsInput{
					PostID: post.ID,
					Cursor: cursor,
					Limit:  pageSize,
				})
				if err != nil {
					t.Logf("list: %v", err)
					return false
				}
				if len(page.Comments) > pageSize {
					return false
				}
				seen = append(seen, commentIDs(page.Comments)...)
				if page.NextCursor == nil {
					break
				}
				cursor = page.NextCursor
			}

			if len(seen) != len(expected) {
				return false
			}
			for i := range expected {
				if seen[i] != expected[i].ID {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 4)),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
