package scheduler

import "sync"

// tableLocks menyediakan mutex per meja. Pasangan (meja, reservasi aktif)
// adalah unit kontensi: urutan inspect-and-commit untuk satu meja harus
// atomik, sedangkan operasi pada meja berbeda bebas berjalan paralel.
type tableLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newTableLocks() *tableLocks {
	return &tableLocks{locks: make(map[uint]*sync.Mutex)}
}

func (tl *tableLocks) get(tableID uint) *sync.Mutex {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	l, ok := tl.locks[tableID]
	if !ok {
		l = &sync.Mutex{}
		tl.locks[tableID] = l
	}
	return l
}

func (tl *tableLocks) Lock(tableID uint) {
	tl.get(tableID).Lock()
}

func (tl *tableLocks) Unlock(tableID uint) {
	tl.get(tableID).Unlock()
}

// TryLock dipakai sweep reclaimer: bila meja sedang dikunci request user,
// sweep melewatinya dan mencoba lagi siklus berikutnya alih-alih menunggu.
func (tl *tableLocks) TryLock(tableID uint) bool {
	return tl.get(tableID).TryLock()
}
