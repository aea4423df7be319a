package scheduler

import (
	"time"

	"github.com/ardisetiawan/resto-seating/models"
)

// Window merepresentasikan rentang waktu half-open [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow membangun window dari waktu mulai dan durasi. Durasi nol atau
// negatif ditolak di sini sehingga tidak pernah sampai ke pengecekan bentrok.
func NewWindow(start time.Time, duration time.Duration) (Window, error) {
	if duration <= 0 {
		return Window{}, &ValidationError{Field: "duration", Message: "must be positive"}
	}
	return Window{Start: start, End: start.Add(duration)}, nil
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps menguji tumpang tindih dua window half-open:
// start_A < end_B && start_B < end_A. Window yang persis bersinggungan
// (end_A == start_B) TIDAK bentrok, supaya booking back-to-back bisa jalan.
func Overlaps(a, b Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// ReservationWindow mengambil window [start, start+durasi) dari reservasi.
func ReservationWindow(r *models.Reservation) Window {
	return Window{Start: r.StartTime, End: r.EndTime()}
}
