package model

import (
	"time"

	"github.com/google/uuid"
)

// Event 晚餐會活動
type Event struct {
	ID              int       `json:"id" db:"id"`
	EventID         uuid.UUID `json:"event_id" db:"event_id"`
	Title           string    `json:"title" db:"title"`
	Date            time.Time `json:"date" db:"date"`
	Time            *string   `json:"time,omitempty" db:"time"`
	Location        string    `json:"location" db:"location"`
	MenuDescription string    `json:"menu_description" db:"menu_description"`
	Capacity        int       `json:"capacity" db:"capacity"`
	Charity         *string   `json:"charity,omitempty" db:"charity"`
	CharityURL      *string   `json:"charity_url,omitempty" db:"charity_url"`
	SuggestedPrice  *string   `json:"suggested_price,omitempty" db:"suggested_price"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateEventParams struct {
	Title           *string
	Date            *time.Time
	Time            *string
	Location        *string
	MenuDescription *string
	Capacity        *int
	Charity         *string
	CharityURL      *string
	SuggestedPrice  *string
}

// EventWithSpots 活動加上剩餘名額，給 landing page 用
type EventWithSpots struct {
	Event
	SpotsLeft int `json:"spots_left"`
}
