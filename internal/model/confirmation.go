package model

import "time"

// Confirmation 報名成功後要寄給訪客的確認訊息
type Confirmation struct {
	RegistrationID int       `json:"registration_id"`
	EventID        int       `json:"event_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	NumGuests      int       `json:"num_guests"`
	EventTitle     string    `json:"event_title"`
	EventDate      time.Time `json:"event_date"`
	EventLocation  string    `json:"event_location"`
}
