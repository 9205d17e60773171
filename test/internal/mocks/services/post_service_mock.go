package services

import (
	"context"

	"supper-club/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type PostServiceMock struct {
	mock.Mock
}

func NewPostServiceMock() *PostServiceMock {
	return &PostServiceMock{}
}

func (m *PostServiceMock) Create(ctx context.Context, title, body string, eventID *uuid.UUID) (*model.Post, error) {
	args := m.Called(ctx, title, body, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *PostServiceMock) List(ctx context.Context, eventID *uuid.UUID) ([]*model.Post, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *PostServiceMock) GetByID(ctx context.Context, id int) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *PostServiceMock) Update(ctx context.Context, id int, title, body *string, eventID *uuid.UUID, unlinkEvent bool) (*model.Post, error) {
	args := m.Called(ctx, id, title, body, eventID, unlinkEvent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *PostServiceMock) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
