package model

import "time"

// Post 公告/部落格文章，可選擇連到某個活動
type Post struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	EventID   *int      `json:"event_id,omitempty" db:"event_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// JOIN events 帶出的活動標題，未連結活動時為 nil
	EventTitle *string `json:"event_title,omitempty" db:"-"`
}

type UpdatePostParams struct {
	Title   *string
	Body    *string
	EventID *int
	// UnlinkEvent 為 true 時把 event_id 設回 NULL
	UnlinkEvent bool
}
