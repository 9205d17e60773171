package model

import "time"

// Registration 訪客報名，佔用活動的名額
type Registration struct {
	ID                  int       `json:"id" db:"id"`
	EventID             int       `json:"event_id" db:"event_id"`
	Name                string    `json:"name" db:"name"`
	Phone               string    `json:"phone" db:"phone"`
	DietaryRestrictions string    `json:"dietary_restrictions" db:"dietary_restrictions"`
	NumGuests           int       `json:"num_guests" db:"num_guests"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// RegistrationWithEvent 報名加上活動資訊，給確認頁用
type RegistrationWithEvent struct {
	Registration
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventTime     *string   `json:"event_time,omitempty"`
	EventLocation string    `json:"event_location"`
}

// CreateRegistrationRequest 報名請求
type CreateRegistrationRequest struct {
	Name                string `json:"name" binding:"required"`
	Phone               string `json:"phone" binding:"required"`
	DietaryRestrictions string `json:"dietary_restrictions"`
	NumGuests           int    `json:"num_guests" binding:"required,min=1"`
}

type UpdateRegistrationParams struct {
	Name                *string
	Phone               *string
	DietaryRestrictions *string
	NumGuests           *int
}
