package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"supper-club/internal/model"
	apperrors "supper-club/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	// List 列出文章；eventID 非 nil 時只回傳該活動的文章
	List(ctx context.Context, eventID *int) ([]*model.Post, error)
	FindByID(ctx context.Context, id int) (*model.Post, error)
	Update(ctx context.Context, id int, params model.UpdatePostParams) (*model.Post, error)
	Delete(ctx context.Context, id int) error
}

type PostRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &PostRepositoryImpl{
		pool: pool,
	}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	query := `
		INSERT INTO posts (title, body, event_id)
		VALUES ($1, $2, $3)
		RETURNING id, title, body, event_id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		post.Title, post.Body, post.EventID,
	).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.EventID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepositoryImpl) List(ctx context.Context, eventID *int) ([]*model.Post, error) {
	query := `
		SELECT p.id, p.title, p.body, p.event_id, p.created_at, p.updated_at,
		       e.title AS event_title
		FROM posts p
		LEFT JOIN events e ON p.event_id = e.id
	`
	args := []interface{}{}
	if eventID != nil {
		query += ` WHERE p.event_id = $1`
		args = append(args, *eventID)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		var post model.Post
		err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Body,
			&post.EventID,
			&post.CreatedAt,
			&post.UpdatedAt,
			&post.EventTitle,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *PostRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Post, error) {
	query := `
		SELECT p.id, p.title, p.body, p.event_id, p.created_at, p.updated_at,
		       e.title AS event_title
		FROM posts p
		LEFT JOIN events e ON p.event_id = e.id
		WHERE p.id = $1
	`

	var post model.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.EventID,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.EventTitle,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}

	return &post, nil
}

func (r *PostRepositoryImpl) Update(ctx context.Context, id int, params model.UpdatePostParams) (*model.Post, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argPos))
		args = append(args, *params.Title)
		argPos++
	}
	if params.Body != nil {
		sets = append(sets, fmt.Sprintf("body = $%d", argPos))
		args = append(args, *params.Body)
		argPos++
	}
	if params.UnlinkEvent {
		sets = append(sets, "event_id = NULL")
	} else if params.EventID != nil {
		sets = append(sets, fmt.Sprintf("event_id = $%d", argPos))
		args = append(args, *params.EventID)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE posts
		SET %s
		WHERE id = $%d
		RETURNING id, title, body, event_id, created_at, updated_at
	`, strings.Join(sets, ", "), argPos)

	var post model.Post
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.EventID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}

	return &post, nil
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM posts
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}

	return nil
}
