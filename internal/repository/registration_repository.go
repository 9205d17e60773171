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

type RegistrationRepository interface {
	ListByEventID(ctx context.Context, eventID int) ([]*model.Registration, error)
	// CountGuests 統計活動已佔用名額，唯讀查詢用（報名寫入路徑要用 SumGuests 走 transaction）
	CountGuests(ctx context.Context, eventID int) (int, error)
	FindByID(ctx context.Context, id int) (*model.Registration, error)
	// FindByIDWithEvent 帶出活動欄位，給報名確認頁用
	FindByIDWithEvent(ctx context.Context, id int) (*model.RegistrationWithEvent, error)
	Update(ctx context.Context, id int, params model.UpdateRegistrationParams) (*model.Registration, error)
	Delete(ctx context.Context, id int) error

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error)
	SumGuests(ctx context.Context, tx pgx.Tx, eventID int) (int, error)
	SumGuestsExcluding(ctx context.Context, tx pgx.Tx, eventID int, excludeID int) (int, error)
	UpdateNumGuests(ctx context.Context, tx pgx.Tx, id int, numGuests int) (*model.Registration, error)
}

type RegistrationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &RegistrationRepositoryImpl{
		pool: pool,
	}
}

func (r *RegistrationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error) {
	query := `
		INSERT INTO registrations (event_id, name, phone, dietary_restrictions, num_guests)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, event_id, name, phone, dietary_restrictions, num_guests, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		registration.EventID, registration.Name, registration.Phone,
		registration.DietaryRestrictions, registration.NumGuests,
	).Scan(
		&registration.ID,
		&registration.EventID,
		&registration.Name,
		&registration.Phone,
		&registration.DietaryRestrictions,
		&registration.NumGuests,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	return registration, nil
}

// SumGuests 統計活動目前已佔用的名額，必須在持有活動 row lock 的 transaction 內呼叫
func (r *RegistrationRepositoryImpl) SumGuests(ctx context.Context, tx pgx.Tx, eventID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(num_guests), 0)
		FROM registrations
		WHERE event_id = $1
	`

	var total int
	if err := tx.QueryRow(ctx, query, eventID).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

// SumGuestsExcluding 同 SumGuests，但排除某筆報名，給管理員改人數時重算用
func (r *RegistrationRepositoryImpl) SumGuestsExcluding(ctx context.Context, tx pgx.Tx, eventID int, excludeID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(num_guests), 0)
		FROM registrations
		WHERE event_id = $1 AND id != $2
	`

	var total int
	if err := tx.QueryRow(ctx, query, eventID, excludeID).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *RegistrationRepositoryImpl) CountGuests(ctx context.Context, eventID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(num_guests), 0)
		FROM registrations
		WHERE event_id = $1
	`

	var total int
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *RegistrationRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.Registration, error) {
	query := `
		SELECT id, event_id, name, phone, dietary_restrictions, num_guests, created_at, updated_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*model.Registration, 0)
	for rows.Next() {
		var registration model.Registration
		err := rows.Scan(
			&registration.ID,
			&registration.EventID,
			&registration.Name,
			&registration.Phone,
			&registration.DietaryRestrictions,
			&registration.NumGuests,
			&registration.CreatedAt,
			&registration.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, &registration)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *RegistrationRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Registration, error) {
	query := `
		SELECT id, event_id, name, phone, dietary_restrictions, num_guests, created_at, updated_at
		FROM registrations
		WHERE id = $1
	`

	var registration model.Registration
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&registration.ID,
		&registration.EventID,
		&registration.Name,
		&registration.Phone,
		&registration.DietaryRestrictions,
		&registration.NumGuests,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

func (r *RegistrationRepositoryImpl) FindByIDWithEvent(ctx context.Context, id int) (*model.RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.event_id, r.name, r.phone, r.dietary_restrictions, r.num_guests,
		       r.created_at, r.updated_at,
		       e.title, e.date, e.time, e.location
		FROM registrations r
		JOIN events e ON r.event_id = e.id
		WHERE r.id = $1
	`

	var reg model.RegistrationWithEvent
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&reg.ID,
		&reg.EventID,
		&reg.Name,
		&reg.Phone,
		&reg.DietaryRestrictions,
		&reg.NumGuests,
		&reg.CreatedAt,
		&reg.UpdatedAt,
		&reg.EventTitle,
		&reg.EventDate,
		&reg.EventTime,
		&reg.EventLocation,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &reg, nil
}

func (r *RegistrationRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateRegistrationParams) (*model.Registration, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *params.Name)
		argPos++
	}
	if params.Phone != nil {
		sets = append(sets, fmt.Sprintf("phone = $%d", argPos))
		args = append(args, *params.Phone)
		argPos++
	}
	if params.DietaryRestrictions != nil {
		sets = append(sets, fmt.Sprintf("dietary_restrictions = $%d", argPos))
		args = append(args, *params.DietaryRestrictions)
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
		UPDATE registrations
		SET %s
		WHERE id = $%d
		RETURNING id, event_id, name, phone, dietary_restrictions, num_guests, created_at, updated_at
	`, strings.Join(sets, ", "), argPos)

	var registration model.Registration
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&registration.ID,
		&registration.EventID,
		&registration.Name,
		&registration.Phone,
		&registration.DietaryRestrictions,
		&registration.NumGuests,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

// UpdateNumGuests 改報名人數走 transaction，容量檢查由 service 在鎖內完成
func (r *RegistrationRepositoryImpl) UpdateNumGuests(ctx context.Context, tx pgx.Tx, id int, numGuests int) (*model.Registration, error) {
	query := `
		UPDATE registrations
		SET num_guests = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, event_id, name, phone, dietary_restrictions, num_guests, created_at, updated_at
	`

	var registration model.Registration
	err := tx.QueryRow(ctx, query, numGuests, time.Now().UTC(), id).Scan(
		&registration.ID,
		&registration.EventID,
		&registration.Name,
		&registration.Phone,
		&registration.DietaryRestrictions,
		&registration.NumGuests,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

func (r *RegistrationRepositoryImpl) Delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM registrations
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrRegistrationNotFound
	}

	return nil
}
