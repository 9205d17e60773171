package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"supper-club/internal/cache"
	"supper-club/internal/model"
	"supper-club/internal/queue"
	"supper-club/internal/repository"
	apperrors "supper-club/pkg/app_errors"
	"supper-club/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type RegistrationService interface {
	// Register 報名活動。容量檢查與寫入在同一個 transaction 內完成，
	// 同一場活動的並發報名不會超賣。
	Register(ctx context.Context, eventID uuid.UUID, req model.CreateRegistrationRequest) (*model.Registration, error)
	GetWithEvent(ctx context.Context, id int) (*model.RegistrationWithEvent, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Registration, error)
	// Update 管理員修正報名資料；改人數時在鎖內重算容量
	Update(ctx context.Context, id int, params model.UpdateRegistrationParams) (*model.Registration, error)
	Delete(ctx context.Context, id int) error
	// ExportCSV 匯出活動的訪客名單
	ExportCSV(ctx context.Context, eventID uuid.UUID, w io.Writer) error
}

type RegistrationServiceImpl struct {
	pool              *pgxpool.Pool
	repository        repository.RegistrationRepository
	eventRepository   repository.EventRepository
	inventoryManager  cache.RedisCapacityInventoryManager
	confirmationQueue queue.ConfirmationQueue
}

func NewRegistrationService(
	pool *pgxpool.Pool,
	registrationRepository repository.RegistrationRepository,
	eventRepository repository.EventRepository,
	inventoryManager cache.RedisCapacityInventoryManager,
	confirmationQueue queue.ConfirmationQueue,
) RegistrationService {
	return &RegistrationServiceImpl{
		pool:              pool,
		repository:        registrationRepository,
		eventRepository:   eventRepository,
		inventoryManager:  inventoryManager,
		confirmationQueue: confirmationQueue,
	}
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, eventID uuid.UUID, req model.CreateRegistrationRequest) (*model.Registration, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, apperrors.ErrInvalidInput
	}
	if req.NumGuests < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	event, err := s.eventRepository.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// 1. Redis 快取先擋：快取有預熱且名額不足就直接拒絕，不用進資料庫排隊
	reserved, err := s.inventoryManager.ReserveSpots(ctx, event.ID, req.NumGuests)
	if err != nil && errors.Is(err, apperrors.ErrCapacityExceeded) {
		return nil, err
	}

	// 2. 資料庫 transaction 是最終依據：鎖活動 row、重算總人數、寫入報名
	registration, err := s.registerTx(ctx, event.ID, req)
	if err != nil {
		if reserved {
			// 回滾快取名額：用 context.Background() 確保一定執行
			if rbErr := s.inventoryManager.ReleaseSpots(context.Background(), event.ID, req.NumGuests); rbErr != nil {
				logger.WithComponent("service").Error("release spots failed",
					zap.Int("event_id", event.ID), zap.Error(rbErr))
			}
		}
		return nil, err
	}

	// 3. 確認訊息丟進隊列；失敗不影響已成立的報名
	confirmation := &model.Confirmation{
		RegistrationID: registration.ID,
		EventID:        event.ID,
		Name:           registration.Name,
		Phone:          registration.Phone,
		NumGuests:      registration.NumGuests,
		EventTitle:     event.Title,
		EventDate:      event.Date,
		EventLocation:  event.Location,
	}
	if err := s.confirmationQueue.PublishConfirmation(ctx, confirmation); err != nil {
		logger.WithComponent("service").Warn("publish confirmation failed",
			zap.Int("registration_id", registration.ID), zap.Error(err))
	}

	return registration, nil
}

func (s *RegistrationServiceImpl) registerTx(ctx context.Context, eventID int, req model.CreateRegistrationRequest) (*model.Registration, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// FOR UPDATE 鎖住活動 row，序列化同一場活動的容量檢查
	event, err := s.eventRepository.FindByIDWithLock(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	taken, err := s.repository.SumGuests(ctx, tx, event.ID)
	if err != nil {
		return nil, err
	}

	if taken+req.NumGuests > event.Capacity {
		return nil, apperrors.ErrCapacityExceeded
	}

	registration := &model.Registration{
		EventID:             event.ID,
		Name:                req.Name,
		Phone:               req.Phone,
		DietaryRestrictions: req.DietaryRestrictions,
		NumGuests:           req.NumGuests,
	}

	registration, err = s.repository.Create(ctx, tx, registration)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return registration, nil
}

func (s *RegistrationServiceImpl) GetWithEvent(ctx context.Context, id int) (*model.RegistrationWithEvent, error) {
	return s.repository.FindByIDWithEvent(ctx, id)
}

func (s *RegistrationServiceImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Registration, error) {
	event, err := s.eventRepository.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.repository.ListByEventID(ctx, event.ID)
}

func (s *RegistrationServiceImpl) Update(ctx context.Context, id int, params model.UpdateRegistrationParams) (*model.Registration, error) {
	if params.NumGuests == nil {
		return s.repository.Update(ctx, id, params)
	}

	if *params.NumGuests < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	// 改人數要重新檢查容量，跟報名走一樣的鎖
	registration, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepository.FindByIDWithLock(ctx, tx, registration.EventID)
	if err != nil {
		return nil, err
	}

	others, err := s.repository.SumGuestsExcluding(ctx, tx, event.ID, id)
	if err != nil {
		return nil, err
	}

	if others+*params.NumGuests > event.Capacity {
		return nil, apperrors.ErrCapacityExceeded
	}

	updated, err := s.repository.UpdateNumGuests(ctx, tx, id, *params.NumGuests)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// 其他欄位另外更新
	params.NumGuests = nil
	if params.Name != nil || params.Phone != nil || params.DietaryRestrictions != nil {
		updated, err = s.repository.Update(ctx, id, params)
		if err != nil {
			return nil, err
		}
	}

	// 重算快取的剩餘名額
	if err := s.inventoryManager.WarmUpInventory(ctx, event.ID, event.Capacity-others-updated.NumGuests); err != nil {
		logger.WithComponent("service").Warn("refresh inventory failed",
			zap.Int("event_id", event.ID), zap.Error(err))
	}

	return updated, nil
}

func (s *RegistrationServiceImpl) Delete(ctx context.Context, id int) error {
	registration, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}

	// 歸還快取名額；快取沒預熱時是 no-op
	if err := s.inventoryManager.ReleaseSpots(ctx, registration.EventID, registration.NumGuests); err != nil {
		logger.WithComponent("service").Warn("release spots failed",
			zap.Int("event_id", registration.EventID), zap.Error(err))
	}

	return nil
}

func (s *RegistrationServiceImpl) ExportCSV(ctx context.Context, eventID uuid.UUID, w io.Writer) error {
	registrations, err := s.ListByEventID(ctx, eventID)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Name", "Phone", "Guests", "Dietary"}); err != nil {
		return err
	}
	for _, r := range registrations {
		record := []string{r.Name, r.Phone, strconv.Itoa(r.NumGuests), r.DietaryRestrictions}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
