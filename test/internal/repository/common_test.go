package repository

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"supper-club/config"
	"supper-club/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// testDB 是測試用的資料庫連接池
var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	if err := database.MigrateUp(&cfg.Database, "../../../internal/database/migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var err error
	testDB, err = database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}

	// 確保資料庫連接正常
	if err := testDB.Ping(context.Background()); err != nil {
		log.Fatalf("Failed to ping test database: %v", err)
	}

	log.Println("Test database connected successfully")
	log.Println("Running repository tests...")

	code := m.Run()
	testDB.Close()
	log.Println("Test database closed")

	os.Exit(code)
}

func setupTestWithTruncate(t *testing.T) func() {
	t.Helper()
	ctx := context.Background()

	// 清空所有測試資料，保留 schema
	_, err := testDB.Exec(ctx, "TRUNCATE posts, registrations, events RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	return func() {
	}
}

// getTestDB 返回測試用的資料庫連接池
func getTestDB() *pgxpool.Pool {
	if testDB == nil {
		panic("testDB is not initialized. Make sure TestMain has run.")
	}
	return testDB
}

// createTestEvent 輔助函數：建立測試活動
func createTestEvent(t *testing.T, title string, date time.Time, capacity int) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO events (event_id, title, date, location, menu_description, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int
	err := testDB.QueryRow(ctx, query,
		uuid.New(), title, date, "555 Bryant Street", "Family style dinner", capacity,
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return id
}

// createTestRegistration 輔助函數：建立測試報名
func createTestRegistration(t *testing.T, eventID int, name string, numGuests int) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO registrations (event_id, name, phone, num_guests)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int
	err := testDB.QueryRow(ctx, query, eventID, name, "555-0100", numGuests).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test registration: %v", err)
	}

	return id
}

// createTestPost 輔助函數：建立測試文章，eventID 可為 nil
func createTestPost(t *testing.T, title string, eventID *int) int {
	t.Helper()
	ctx := context.Background()

	query := `
		INSERT INTO posts (title, body, event_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int
	err := testDB.QueryRow(ctx, query, title, "post body", eventID).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return id
}
