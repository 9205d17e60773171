package service

import (
	"context"
	"strings"
	"time"

	"supper-club/internal/cache"
	"supper-club/internal/model"
	"supper-club/internal/repository"
	apperrors "supper-club/pkg/app_errors"
	"supper-club/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	List(ctx context.Context) ([]*model.Event, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.EventWithSpots, error)
	// GetNextUpcoming 回傳日期最近的未來活動與剩餘名額，給 landing page 用
	GetNextUpcoming(ctx context.Context) (*model.EventWithSpots, error)
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	UpdateByEventID(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	// DeleteByEventID 刪除活動；該活動的報名一併刪除，文章保留但解除連結
	DeleteByEventID(ctx context.Context, eventID uuid.UUID) error
}

type EventServiceImpl struct {
	repo             repository.EventRepository
	registrationRepo repository.RegistrationRepository
	inventoryManager cache.RedisCapacityInventoryManager
}

func NewEventService(
	repo repository.EventRepository,
	registrationRepo repository.RegistrationRepository,
	inventoryManager cache.RedisCapacityInventoryManager,
) EventService {
	return &EventServiceImpl{
		repo:             repo,
		registrationRepo: registrationRepo,
		inventoryManager: inventoryManager,
	}
}

func (s *EventServiceImpl) List(ctx context.Context) ([]*model.Event, error) {
	return s.repo.List(ctx)
}

func (s *EventServiceImpl) GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.EventWithSpots, error) {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.withSpots(ctx, event)
}

func (s *EventServiceImpl) GetNextUpcoming(ctx context.Context) (*model.EventWithSpots, error) {
	event, err := s.repo.FindNextUpcoming(ctx, time.Now().UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, err
	}
	return s.withSpots(ctx, event)
}

// withSpots 先查 Redis 快取，沒預熱再回資料庫算。
// 管理員把容量改到低於已報名人數時差額會是負的，對外一律顯示 0。
func (s *EventServiceImpl) withSpots(ctx context.Context, event *model.Event) (*model.EventWithSpots, error) {
	spots, err := s.inventoryManager.GetSpotsLeft(ctx, event.ID)
	if err != nil {
		taken, err := s.registrationRepo.CountGuests(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		spots = event.Capacity - taken
	}
	if spots < 0 {
		spots = 0
	}
	return &model.EventWithSpots{Event: *event, SpotsLeft: spots}, nil
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	// 預熱剩餘名額快取；失敗只記 log，報名路徑會退回資料庫判斷
	if err := s.inventoryManager.WarmUpInventory(ctx, created.ID, created.Capacity); err != nil {
		logger.WithComponent("service").Warn("warm up inventory failed",
			zap.Int("event_id", created.ID), zap.Error(err))
	}

	return created, nil
}

func validateEvent(event *model.Event) error {
	if strings.TrimSpace(event.Title) == "" ||
		strings.TrimSpace(event.Location) == "" ||
		strings.TrimSpace(event.MenuDescription) == "" {
		return apperrors.ErrInvalidInput
	}
	if event.Date.IsZero() {
		return apperrors.ErrInvalidInput
	}
	if event.Capacity <= 0 {
		return apperrors.ErrInvalidInput
	}
	return nil
}

func (s *EventServiceImpl) UpdateByEventID(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	if params.Capacity != nil && *params.Capacity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}

	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, event.ID, params)
	if err != nil {
		return nil, err
	}

	// 容量變了就重算快取的剩餘名額；縮到低於已報名人數時以 0 計
	if params.Capacity != nil {
		taken, err := s.registrationRepo.CountGuests(ctx, updated.ID)
		if err == nil {
			spots := updated.Capacity - taken
			if spots < 0 {
				spots = 0
			}
			if err := s.inventoryManager.WarmUpInventory(ctx, updated.ID, spots); err != nil {
				logger.WithComponent("service").Warn("refresh inventory failed",
					zap.Int("event_id", updated.ID), zap.Error(err))
			}
		}
	}

	return updated, nil
}

func (s *EventServiceImpl) DeleteByEventID(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, event.ID); err != nil {
		return err
	}

	if err := s.inventoryManager.DropInventory(ctx, event.ID); err != nil {
		logger.WithComponent("service").Warn("drop inventory failed",
			zap.Int("event_id", event.ID), zap.Error(err))
	}

	return nil
}
