package repository

import (
	"context"
	"testing"
	"time"

	"supper-club/internal/model"
	"supper-club/internal/repository"
	apperrors "supper-club/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	repo := repository.NewPostRepository(getTestDB())
	ctx := context.Background()

	t.Run("WithoutEvent", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		post := &model.Post{
			Title: "Welcome",
			Body:  "First post of the season",
		}

		created, err := repo.Create(ctx, post)

		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Welcome", created.Title)
		assert.Nil(t, created.EventID)
		assert.NotZero(t, created.CreatedAt)
	})

	t.Run("LinkedToEvent", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)

		post := &model.Post{
			Title:   "Menu Preview",
			Body:    "Here is what we are cooking",
			EventID: &eventID,
		}

		created, err := repo.Create(ctx, post)

		require.NoError(t, err)
		require.NotNil(t, created.EventID)
		assert.Equal(t, eventID, *created.EventID)
	})
}

func TestPostRepository_List(t *testing.T) {
	repo := repository.NewPostRepository(getTestDB())
	ctx := context.Background()

	t.Run("EmptyList", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		posts, err := repo.List(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("IncludesEventTitle", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID := createTestEvent(t, "Linked Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)
		createTestPost(t, "Linked Post", &eventID)
		createTestPost(t, "Standalone Post", nil)

		posts, err := repo.List(ctx, nil)

		require.NoError(t, err)
		assert.Len(t, posts, 2)
		for _, post := range posts {
			if post.EventID != nil {
				require.NotNil(t, post.EventTitle)
				assert.Equal(t, "Linked Dinner", *post.EventTitle)
			} else {
				assert.Nil(t, post.EventTitle)
			}
		}
	})

	t.Run("FilterByEvent", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)
		otherID := createTestEvent(t, "Other", time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), 20)
		createTestPost(t, "Target", &eventID)
		createTestPost(t, "Other Post", &otherID)
		createTestPost(t, "Standalone", nil)

		posts, err := repo.List(ctx, &eventID)

		require.NoError(t, err)
		assert.Len(t, posts, 1)
		assert.Equal(t, "Target", posts[0].Title)
	})
}

func TestPostRepository_FindByID(t *testing.T) {
	repo := repository.NewPostRepository(getTestDB())
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		postID := createTestPost(t, "Findable", nil)

		found, err := repo.FindByID(ctx, postID)

		require.NoError(t, err)
		assert.Equal(t, postID, found.ID)
		assert.Equal(t, "Findable", found.Title)
	})

	t.Run("NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		_, err := repo.FindByID(ctx, 99999)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrPostNotFound, err)
	})
}

func TestPostRepository_Update(t *testing.T) {
	repo := repository.NewPostRepository(getTestDB())
	ctx := context.Background()

	t.Run("PartialUpdate", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		postID := createTestPost(t, "Original", nil)

		body := "revised body"
		updated, err := repo.Update(ctx, postID, model.UpdatePostParams{Body: &body})

		require.NoError(t, err)
		assert.Equal(t, "revised body", updated.Body)
		assert.Equal(t, "Original", updated.Title)
	})

	t.Run("UnlinkEvent", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		eventID := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)
		postID := createTestPost(t, "Linked", &eventID)

		updated, err := repo.Update(ctx, postID, model.UpdatePostParams{UnlinkEvent: true})

		require.NoError(t, err)
		assert.Nil(t, updated.EventID)
	})

	t.Run("NoFields", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		postID := createTestPost(t, "Untouched", nil)

		_, err := repo.Update(ctx, postID, model.UpdatePostParams{})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrInvalidInput, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		title := "Ghost"
		_, err := repo.Update(ctx, 99999, model.UpdatePostParams{Title: &title})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrPostNotFound, err)
	})
}

func TestPostRepository_Delete(t *testing.T) {
	repo := repository.NewPostRepository(getTestDB())
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		postID := createTestPost(t, "Doomed", nil)

		err := repo.Delete(ctx, postID)
		require.NoError(t, err)

		_, err = repo.FindByID(ctx, postID)
		assert.Equal(t, apperrors.ErrPostNotFound, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		err := repo.Delete(ctx, 99999)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrPostNotFound, err)
	})
}
