package events

import (
	"encoding/json"
	"sync"

	"github.com/ardisetiawan/resto-seating/models"
	"github.com/ardisetiawan/resto-seating/utils"
	"github.com/gorilla/websocket"
)

// Event types
const (
	EventTableUpdate         = "table_update"
	EventTableReclaimed      = "table_reclaimed"
	EventReservationUpdate   = "reservation_update"
	EventReservationReminder = "reservation_reminder"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung client floor display / terminal host dan menyiarkan
// perubahan state meja dan reservasi ke semuanya.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient menambahkan connection ke set dengan role-nya
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastTableUpdate -> perubahan status meja
func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

// BroadcastTableReclaimed -> meja dilepas paksa oleh reclaimer
func BroadcastTableReclaimed(table models.Table) {
	broadcast(Message{
		Event: EventTableReclaimed,
		Data:  table,
	})
}

// BroadcastReservationUpdate -> perubahan lifecycle reservasi
func BroadcastReservationUpdate(res models.Reservation) {
	broadcast(Message{
		Event: EventReservationUpdate,
		Data:  res,
	})
}

// BroadcastReservationReminder -> daftar reservasi yang segera mulai;
// modul notifikasi (email dsb.) berlangganan lewat sini
func BroadcastReservationReminder(upcoming []models.Reservation) {
	broadcast(Message{
		Event: EventReservationReminder,
		Data:  upcoming,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling event: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending event to %s client: %v", role, err)
			continue
		}
	}
}
