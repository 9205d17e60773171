package service

import (
	"context"
	"strings"

	"supper-club/internal/model"
	"supper-club/internal/repository"
	apperrors "supper-club/pkg/app_errors"

	"github.com/google/uuid"
)

type PostService interface {
	// Create 建立文章；eventID 非 nil 時必須指向存在的活動
	Create(ctx context.Context, title, body string, eventID *uuid.UUID) (*model.Post, error)
	// List 列出文章；eventID 非 nil 時只列該活動的文章
	List(ctx context.Context, eventID *uuid.UUID) ([]*model.Post, error)
	GetByID(ctx context.Context, id int) (*model.Post, error)
	Update(ctx context.Context, id int, title, body *string, eventID *uuid.UUID, unlinkEvent bool) (*model.Post, error)
	Delete(ctx context.Context, id int) error
}

type PostServiceImpl struct {
	repo      repository.PostRepository
	eventRepo repository.EventRepository
}

func NewPostService(repo repository.PostRepository, eventRepo repository.EventRepository) PostService {
	return &PostServiceImpl{repo: repo, eventRepo: eventRepo}
}

func (s *PostServiceImpl) Create(ctx context.Context, title, body string, eventID *uuid.UUID) (*model.Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return nil, apperrors.ErrInvalidInput
	}

	post := &model.Post{
		Title: title,
		Body:  body,
	}

	if eventID != nil {
		event, err := s.eventRepo.FindByEventID(ctx, *eventID)
		if err != nil {
			return nil, err
		}
		post.EventID = &event.ID
	}

	return s.repo.Create(ctx, post)
}

func (s *PostServiceImpl) List(ctx context.Context, eventID *uuid.UUID) ([]*model.Post, error) {
	if eventID == nil {
		return s.repo.List(ctx, nil)
	}

	event, err := s.eventRepo.FindByEventID(ctx, *eventID)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, &event.ID)
}

func (s *PostServiceImpl) GetByID(ctx context.Context, id int) (*model.Post, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PostServiceImpl) Update(ctx context.Context, id int, title, body *string, eventID *uuid.UUID, unlinkEvent bool) (*model.Post, error) {
	params := model.UpdatePostParams{
		Title:       title,
		Body:        body,
		UnlinkEvent: unlinkEvent,
	}

	if eventID != nil && !unlinkEvent {
		event, err := s.eventRepo.FindByEventID(ctx, *eventID)
		if err != nil {
			return nil, err
		}
		params.EventID = &event.ID
	}

	return s.repo.Update(ctx, id, params)
}

func (s *PostServiceImpl) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
