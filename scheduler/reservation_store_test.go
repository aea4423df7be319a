package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ardisetiawan/resto-seating/models"
)

func seedReservation(t *testing.T, store *ReservationStore, tableID uint, start time.Time, minutes int) *models.Reservation {
	t.Helper()
	res := &models.Reservation{
		TableID:         tableID,
		ClientID:        1,
		PartySize:       2,
		StartTime:       start,
		DurationMinutes: minutes,
	}
	if err := store.Create(nil, res); err != nil {
		t.Fatalf("failed to seed reservation: %v", err)
	}
	return res
}

func TestReservationStoreCreateDefaults(t *testing.T) {
	db := setupTestDB(t)
	store := NewReservationStore(db)
	table := seedTable(t, db, "A1", 4, "")

	res := &models.Reservation{
		TableID:         table.ID,
		ClientID:        7,
		PartySize:       2,
		StartTime:       time.Now().Add(time.Hour),
		DurationMinutes: 60,
		Status:          "confirmed", // harus dipaksa kembali ke pending
	}
	err := store.Create(nil, res)
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationStatusPending, res.Status)
	assert.NotEmpty(t, res.Code)
	assert.NotZero(t, res.ID)
}

func TestReservationStoreGetByCode(t *testing.T) {
	db := setupTestDB(t)
	store := NewReservationStore(db)
	table := seedTable(t, db, "A1", 4, "")
	res := seedReservation(t, store, table.ID, time.Now().Add(time.Hour), 60)

	found, err := store.GetByCode(res.Code)
	assert.NoError(t, err)
	assert.Equal(t, res.ID, found.ID)

	_, err = store.GetByCode("does-not-exist")
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReservationStoreLifecycle(t *testing.T) {
	db := setupTestDB(t)
	store := NewReservationStore(db)
	table := seedTable(t, db, "A1", 4, "")

	res := seedReservation(t, store, table.ID, time.Now().Add(time.Hour), 60)

	confirmed, err := store.UpdateState(nil, res.ID, models.ReservationStatusConfirmed, "")
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationStatusConfirmed, confirmed.Status)

	completed, err := store.UpdateState(nil, res.ID, models.ReservationStatusCompleted, "")
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCompleted, completed.Status)

	// completed terminal: tidak ada jalan keluar
	_, err = store.UpdateState(nil, res.ID, models.ReservationStatusCancelled, "")
	var invalid *InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, "reservation", invalid.Entity)
}

func TestReservationStoreCancelRecordsReason(t *testing.T) {
	db := setupTestDB(t)
	store := NewReservationStore(db)
	table := seedTable(t, db, "A1", 4, "")
	res := seedReservation(t, store, table.ID, time.Now().Add(time.Hour), 60)

	cancelled, err := store.UpdateState(nil, res.ID, models.ReservationStatusCancelled, "no-show")
	assert.NoError(t, err)
	assert.Equal(t, models.ReservationStatusCancelled, cancelled.Status)
	assert.Equal(t, "no-show", cancelled.CancelReason)

	// cancelled juga terminal
	_, err = store.UpdateState(nil, res.ID, models.ReservationStatusConfirmed, "")
	assert.Error(t, err)
}

func TestReservationStoreListActiveByTable(t *testing.T) {
	db := setupTestDB(t)
	store := NewReservationStore(db)
	table := seedTable(t, db, "A1", 4, "")

	later := seedReservation(t, store, table.ID, time.Now().Add(3*time.Hour), 60)
	earlier := seedReservation(t, store, table.ID, time.Now().Add(time.Hour), 60)
	cancelled := seedReservation(t, store, table.ID, time.Now().Add(5*time.Hour), 60)
	_, err := store.UpdateState(nil, cancelled.ID, models.ReservationStatusCancelled, "changed plans")
	assert.NoError(t, err)

	active, err := store.ListActiveByTable(nil, table.ID)
	assert.NoError(t, err)
	assert.Len(t, active, 2)
	// urut waktu mulai menaik
	assert.Equal(t, earlier.ID, active[0].ID)
	assert.Equal(t, later.ID, active[1].ID)
}

func TestReservationStoreListUpcoming(t *testing.T) {
	db := setupTestDB(t)
	store := NewReservationStore(db)
	table := seedTable(t, db, "A1", 4, "")

	soon := seedReservation(t, store, table.ID, time.Now().Add(30*time.Minute), 60)
	seedReservation(t, store, table.ID, time.Now().Add(5*time.Hour), 60) // di luar horizon

	upcoming, err := store.ListUpcoming(time.Hour)
	assert.NoError(t, err)
	assert.Len(t, upcoming, 1)
	assert.Equal(t, soon.ID, upcoming[0].ID)
}

func TestReservationStoreListOverdue(t *testing.T) {
	db := setupTestDB(t)
	store := NewReservationStore(db)
	table := seedTable(t, db, "A1", 4, "")

	overdue := seedReservation(t, store, table.ID, time.Now().Add(-30*time.Minute), 60)
	seedReservation(t, store, table.ID, time.Now().Add(-5*time.Minute), 60)  // masih dalam tenggang
	seedReservation(t, store, table.ID, time.Now().Add(2*time.Hour), 60)     // belum mulai

	list, err := store.ListOverdue(15 * time.Minute)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, overdue.ID, list[0].ID)
}

func TestReservationStoreListByTableWithWindow(t *testing.T) {
	db := setupTestDB(t)
	store := NewReservationStore(db)
	table := seedTable(t, db, "A1", 4, "")

	base := time.Now().Add(time.Hour)
	inWindow := seedReservation(t, store, table.ID, base, 60)
	seedReservation(t, store, table.ID, base.Add(4*time.Hour), 60)

	w := mustWindow(t, base.Add(-15*time.Minute), 90*time.Minute)
	list, err := store.ListByTable(table.ID, &w)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, inWindow.ID, list[0].ID)

	all, err := store.ListByTable(table.ID, nil)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}
