package services

import (
	"context"
	"io"

	"supper-club/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type RegistrationServiceMock struct {
	mock.Mock
}

func NewRegistrationServiceMock() *RegistrationServiceMock {
	return &RegistrationServiceMock{}
}

func (m *RegistrationServiceMock) Register(ctx context.Context, eventID uuid.UUID, req model.CreateRegistrationRequest) (*model.Registration, error) {
	args := m.Called(ctx, eventID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) GetWithEvent(ctx context.Context, id int) (*model.RegistrationWithEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RegistrationWithEvent), args.Error(1)
}

func (m *RegistrationServiceMock) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) Update(ctx context.Context, id int, params model.UpdateRegistrationParams) (*model.Registration, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *RegistrationServiceMock) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RegistrationServiceMock) ExportCSV(ctx context.Context, eventID uuid.UUID, w io.Writer) error {
	args := m.Called(ctx, eventID, w)
	return args.Error(0)
}
