package scheduler

import (
	"errors"
	"fmt"
)

// Error domain penjadwalan. Semuanya dikembalikan sebagai nilai, bukan panic,
// karena bentrok jadwal adalah hasil normal di bawah kontensi.
var (
	// ErrConflict berarti jendela waktu sudah terpakai reservasi lain.
	// Caller diharapkan query ulang ketersediaan, bukan menganggap fatal.
	ErrConflict = errors.New("time window conflicts with an existing reservation")

	// ErrCapacityExceeded berarti jumlah tamu melebihi kapasitas meja.
	ErrCapacityExceeded = errors.New("party size exceeds table capacity")

	ErrTableNotFound       = errors.New("table not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrOrderNotFound       = errors.New("order not found")

	// ErrTableBusy dikembalikan operasi non-blocking (sweep reclaimer) bila
	// meja sedang dikunci request lain; coba lagi siklus berikutnya.
	ErrTableBusy = errors.New("table is locked by another operation")
)

// InvalidTransitionError menandakan pelanggaran state machine. Ini sinyal bug
// pada caller, bukan hasil normal, dan dicatat di level warning.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %q to %q", e.Entity, e.From, e.To)
}

// ValidationError untuk input yang ditolak sebelum menyentuh state machine.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
