package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ardisetiawan/resto-seating/models"
	"github.com/ardisetiawan/resto-seating/router"
	"github.com/ardisetiawan/resto-seating/scheduler"
	"github.com/ardisetiawan/resto-seating/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 0. Seed admin + meja, login -> token
// 1. Cari meja tersedia, buat reservasi (bentrok ditolak)
// 2. Confirm -> seat -> meja occupied
// 3. Buka order walk-in di meja lain, tutup -> meja kembali free
// 4. Cancel reservasi lain -> window yang sama bisa dibooking ulang
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB()
	sched := scheduler.NewAvailabilityScheduler(db, scheduler.DefaultPolicy())
	r := router.SetupRouter(db, sched)

	token := loginTest(t, r)

	start := time.Now().UTC().Add(2 * time.Hour)

	// 1. dua meja free untuk rombongan 4
	tables := findAvailableTest(t, r, start, 4)
	if len(tables) != 2 {
		t.Fatalf("expected 2 available tables, got %d", len(tables))
	}

	resID := createReservationTest(t, r, token, 1, start, 4, http.StatusCreated)

	// window yang memotong reservasi tadi ditolak
	createReservationTest(t, r, token, 1, start.Add(30*time.Minute), 2, http.StatusConflict)

	// meja kedua masih bisa
	secondID := createReservationTest(t, r, token, 2, start.Add(30*time.Minute), 2, http.StatusCreated)

	// 2. confirm lalu seat
	doPostTest(t, r, token, "/reservations/"+strconv.Itoa(resID)+"/confirm", nil, http.StatusOK)
	doPostTest(t, r, token, "/reservations/"+strconv.Itoa(resID)+"/seat", nil, http.StatusOK)
	assertTableStatus(t, db, 1, models.TableStatusOccupied)

	// 3. walk-in bentrok dengan reservasi meja 2 yang mulai 2.5 jam lagi? tidak:
	// estimasi walk-in hanya 90 menit, jadi order boleh dibuka
	orderID := openOrderTest(t, r, token, 2)
	assertTableStatus(t, db, 2, models.TableStatusOccupied)

	doPostTest(t, r, token, "/orders/"+strconv.Itoa(orderID)+"/close", nil, http.StatusOK)
	assertTableStatus(t, db, 2, models.TableStatusFree)

	// 4. cancel reservasi meja 2 lalu booking ulang window yang sama
	doPostTest(t, r, token, "/reservations/"+strconv.Itoa(secondID)+"/cancel",
		map[string]string{"reason": "guest called"}, http.StatusOK)
	createReservationTest(t, r, token, 2, start.Add(30*time.Minute), 2, http.StatusCreated)

	// 5. logout me-blacklist token; request berikutnya ditolak
	doPostTest(t, r, token, "/logout", nil, http.StatusOK)
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected blacklisted token to be rejected, got code=%d", w.Code)
	}
}

// setupTestDB -> migrasi model di SQLite in-memory + seed data
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Reservation{},
		&models.Order{},
		&models.CleaningLog{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	utils.InitDB(db)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Test Admin",
		Email:    "admin@example.com",
		Password: string(hashedPassword),
		Role:     "admin",
	})

	db.Create(&models.Table{
		TableNumber:     "A1",
		Capacity:        4,
		Location:        "Main",
		Status:          models.TableStatusFree,
		StatusChangedAt: time.Now(),
	})
	db.Create(&models.Table{
		TableNumber:     "B1",
		Capacity:        6,
		Location:        "Main",
		Status:          models.TableStatusFree,
		StatusChangedAt: time.Now(),
	})

	return db
}

func loginTest(t *testing.T, r *gin.Engine) string {
	body := map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	}
	bodyBytes, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("loginTest fail: code=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("loginTest unmarshal fail: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("loginTest fail: empty token")
	}
	return resp.Data.Token
}

func findAvailableTest(t *testing.T, r *gin.Engine, start time.Time, partySize int) []interface{} {
	url := "/availability?start=" + start.Format(time.RFC3339) +
		"&duration_minutes=90&party_size=" + strconv.Itoa(partySize)
	req := httptest.NewRequest(http.MethodGet, url, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("findAvailableTest fail: code=%d, body=%s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("findAvailableTest unmarshal fail: %v", err)
	}
	data, _ := resp["data"].([]interface{})
	return data
}

func createReservationTest(t *testing.T, r *gin.Engine, token string, tableID uint, start time.Time, partySize, wantCode int) int {
	body := map[string]interface{}{
		"table_id":         tableID,
		"client_id":        1,
		"party_size":       partySize,
		"start_time":       start.UTC().Format(time.RFC3339),
		"duration_minutes": 90,
	}
	bodyBytes, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != wantCode {
		t.Fatalf("createReservationTest fail: code=%d want=%d, body=%s", w.Code, wantCode, w.Body.String())
	}
	if wantCode != http.StatusCreated {
		return 0
	}

	var resp struct {
		Data struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("createReservationTest unmarshal fail: %v", err)
	}
	return resp.Data.ID
}

func openOrderTest(t *testing.T, r *gin.Engine, token string, tableID uint) int {
	body := map[string]interface{}{"table_id": tableID}
	bodyBytes, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("openOrderTest fail: code=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("openOrderTest unmarshal fail: %v", err)
	}
	return resp.Data.ID
}

func doPostTest(t *testing.T, r *gin.Engine, token, url string, body interface{}, wantCode int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body fail: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != wantCode {
		t.Fatalf("doPostTest %s fail: code=%d want=%d, body=%s", url, w.Code, wantCode, w.Body.String())
	}
}

func assertTableStatus(t *testing.T, db *gorm.DB, tableID uint, want string) {
	var table models.Table
	if err := db.First(&table, tableID).Error; err != nil {
		t.Fatalf("load table %d fail: %v", tableID, err)
	}
	if table.Status != want {
		t.Fatalf("table %d status = %s, want %s", tableID, table.Status, want)
	}
}
