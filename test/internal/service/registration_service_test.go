package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"supper-club/internal/cache"
	"supper-club/internal/model"
	"supper-club/internal/queue"
	"supper-club/internal/repository"
	"supper-club/internal/service"
	apperrors "supper-club/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistrationService() (service.RegistrationService, cache.RedisCapacityInventoryManager, queue.ConfirmationQueue) {
	registrationRepo := repository.NewRegistrationRepository(getTestDB())
	eventRepo := repository.NewEventRepository(getTestDB())
	inventory := cache.NewRedisCapacityInventoryManager(getTestRdb())
	confirmationQueue := queue.NewConfirmationQueue(10)
	svc := service.NewRegistrationService(getTestDB(), registrationRepo, eventRepo, inventory, confirmationQueue)
	return svc, inventory, confirmationQueue
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		_, eventUUID := createTestEvent(t, "Autumn Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)

		req := model.CreateRegistrationRequest{
			Name:                "Alice Chen",
			Phone:               "555-0101",
			DietaryRestrictions: "vegetarian",
			NumGuests:           3,
		}
		registration, err := svc.Register(ctx, eventUUID, req)

		require.NoError(t, err)
		assert.NotZero(t, registration.ID)
		assert.Equal(t, "Alice Chen", registration.Name)
		assert.Equal(t, 3, registration.NumGuests)
	})

	t.Run("Success - DecrementsWarmedInventory", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, inventory, _ := newRegistrationService()
		eventID, eventUUID := createTestEvent(t, "Autumn Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)
		require.NoError(t, inventory.WarmUpInventory(ctx, eventID, 20))

		req := model.CreateRegistrationRequest{Name: "Bob", Phone: "555-0102", NumGuests: 4}
		_, err := svc.Register(ctx, eventUUID, req)

		require.NoError(t, err)
		spots, err := inventory.GetSpotsLeft(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, 16, spots)
	})

	t.Run("Success - PublishesConfirmation", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, confirmationQueue := newRegistrationService()
		_, eventUUID := createTestEvent(t, "Autumn Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)

		subCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		deliveries, err := confirmationQueue.SubscribeConfirmations(subCtx)
		require.NoError(t, err)

		req := model.CreateRegistrationRequest{Name: "Carol", Phone: "555-0103", NumGuests: 2}
		registration, err := svc.Register(ctx, eventUUID, req)
		require.NoError(t, err)

		select {
		case d := <-deliveries:
			require.NotNil(t, d.Data)
			assert.Equal(t, registration.ID, d.Data.RegistrationID)
			assert.Equal(t, "Carol", d.Data.Name)
			assert.Equal(t, "Autumn Dinner", d.Data.EventTitle)
			d.Ack()
		case <-subCtx.Done():
			t.Fatal("timeout 未收到確認訊息")
		}
	})

	t.Run("Failed - InvalidInput", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		_, eventUUID := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)

		cases := []model.CreateRegistrationRequest{
			{Name: "", Phone: "555-0101", NumGuests: 1},
			{Name: "   ", Phone: "555-0101", NumGuests: 1},
			{Name: "Alice", Phone: "", NumGuests: 1},
			{Name: "Alice", Phone: "555-0101", NumGuests: 0},
		}
		for _, req := range cases {
			_, err := svc.Register(ctx, eventUUID, req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		}
	})

	t.Run("Failed - EventNotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()

		req := model.CreateRegistrationRequest{Name: "Alice", Phone: "555-0101", NumGuests: 1}
		_, err := svc.Register(ctx, uuid.New(), req)

		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})

	t.Run("Failed - CapacityExceeded", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		_, eventUUID := createTestEvent(t, "Small Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 10)

		_, err := svc.Register(ctx, eventUUID, model.CreateRegistrationRequest{Name: "Alice", Phone: "555-0101", NumGuests: 7})
		require.NoError(t, err)
		_, err = svc.Register(ctx, eventUUID, model.CreateRegistrationRequest{Name: "Bob", Phone: "555-0102", NumGuests: 3})
		require.NoError(t, err)

		// 名額已滿，多一位都不行
		_, err = svc.Register(ctx, eventUUID, model.CreateRegistrationRequest{Name: "Carol", Phone: "555-0103", NumGuests: 1})
		assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	})

	t.Run("Failed - FastFailFromCache", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, inventory, _ := newRegistrationService()
		eventID, eventUUID := createTestEvent(t, "Full Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 10)
		require.NoError(t, inventory.WarmUpInventory(ctx, eventID, 0))

		_, err := svc.Register(ctx, eventUUID, model.CreateRegistrationRequest{Name: "Alice", Phone: "555-0101", NumGuests: 1})
		assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

		// 快取擋下時不應寫入資料庫
		var count int
		require.NoError(t, getTestDB().QueryRow(ctx,
			"SELECT COUNT(*) FROM registrations WHERE event_id = $1", eventID).Scan(&count))
		assert.Zero(t, count)
	})
}

func TestRegistrationService_GetWithEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		eventID, _ := createTestEvent(t, "Joined Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)
		regID := createTestRegistration(t, eventID, "Alice", 2)

		found, err := svc.GetWithEvent(ctx, regID)

		require.NoError(t, err)
		assert.Equal(t, "Alice", found.Name)
		assert.Equal(t, "Joined Dinner", found.EventTitle)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()

		_, err := svc.GetWithEvent(ctx, 99999)
		assert.ErrorIs(t, err, apperrors.ErrRegistrationNotFound)
	})
}

func TestRegistrationService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - ContactFieldsOnly", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		eventID, _ := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)
		regID := createTestRegistration(t, eventID, "Alice", 2)

		phone := "555-9999"
		updated, err := svc.Update(ctx, regID, model.UpdateRegistrationParams{Phone: &phone})

		require.NoError(t, err)
		assert.Equal(t, "555-9999", updated.Phone)
		assert.Equal(t, 2, updated.NumGuests)
	})

	t.Run("Success - IncreaseGuestsWithinCapacity", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		eventID, _ := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 10)
		regID := createTestRegistration(t, eventID, "Alice", 2)
		createTestRegistration(t, eventID, "Bob", 3)

		numGuests := 7
		updated, err := svc.Update(ctx, regID, model.UpdateRegistrationParams{NumGuests: &numGuests})

		require.NoError(t, err)
		assert.Equal(t, 7, updated.NumGuests)
	})

	t.Run("Failed - IncreaseGuestsOverCapacity", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		eventID, _ := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 10)
		regID := createTestRegistration(t, eventID, "Alice", 2)
		createTestRegistration(t, eventID, "Bob", 3)

		numGuests := 8
		_, err := svc.Update(ctx, regID, model.UpdateRegistrationParams{NumGuests: &numGuests})

		assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	})

	t.Run("Failed - ZeroGuests", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		eventID, _ := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 10)
		regID := createTestRegistration(t, eventID, "Alice", 2)

		numGuests := 0
		_, err := svc.Update(ctx, regID, model.UpdateRegistrationParams{NumGuests: &numGuests})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestRegistrationService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - ReleasesWarmedSpots", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, inventory, _ := newRegistrationService()
		eventID, _ := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)
		regID := createTestRegistration(t, eventID, "Alice", 4)
		require.NoError(t, inventory.WarmUpInventory(ctx, eventID, 16))

		err := svc.Delete(ctx, regID)

		require.NoError(t, err)
		spots, err := inventory.GetSpotsLeft(ctx, eventID)
		require.NoError(t, err)
		assert.Equal(t, 20, spots)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()

		err := svc.Delete(ctx, 99999)
		assert.ErrorIs(t, err, apperrors.ErrRegistrationNotFound)
	})
}

func TestRegistrationService_ExportCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()
		eventID, eventUUID := createTestEvent(t, "Dinner", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 20)
		createTestRegistration(t, eventID, "Alice", 2)

		var buf bytes.Buffer
		err := svc.ExportCSV(ctx, eventUUID, &buf)

		require.NoError(t, err)
		out := buf.String()
		assert.Contains(t, out, "Name,Phone,Guests,Dietary")
		assert.Contains(t, out, "Alice,555-0100,2,")
	})

	t.Run("Failed - EventNotFound", func(t *testing.T) {
		cleanup := setupTestWithTruncate(t)
		defer cleanup()

		svc, _, _ := newRegistrationService()

		var buf bytes.Buffer
		err := svc.ExportCSV(ctx, uuid.New(), &buf)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}
