package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ardisetiawan/resto-seating/events"
	"github.com/ardisetiawan/resto-seating/scheduler"
	"github.com/ardisetiawan/resto-seating/utils"
)

type ReservationController struct {
	Scheduler *scheduler.AvailabilityScheduler
}

func NewReservationController(s *scheduler.AvailabilityScheduler) *ReservationController {
	return &ReservationController{Scheduler: s}
}

// CreateReservation -> buat reservasi pending. table_id boleh kosong:
// scheduler memilih meja best-fit dari yang tersedia.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		TableID         uint      `json:"table_id"`
		ClientID        uint      `json:"client_id" binding:"required"`
		PartySize       int       `json:"party_size" binding:"required,min=1"`
		StartTime       time.Time `json:"start_time" binding:"required"`
		DurationMinutes int       `json:"duration_minutes" binding:"required,min=1"`
		Location        string    `json:"location"`
		Notes           string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	window, err := scheduler.NewWindow(req.StartTime, time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	tableID := req.TableID
	if tableID == 0 {
		// auto-assign: cari kandidat lalu ambil yang paling pas
		candidates, err := rc.Scheduler.FindAvailableTables(window, req.PartySize, req.Location)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		best := rc.Scheduler.BestFit(candidates, req.PartySize)
		if best == nil {
			utils.RespondError(c, http.StatusConflict, scheduler.ErrConflict)
			return
		}
		tableID = best.ID
	}

	res, err := rc.Scheduler.Reserve(tableID, req.ClientID, window, req.PartySize, req.Notes)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	events.BroadcastReservationUpdate(*res)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", res)
}

// GetReservation -> detail reservasi; menerima id numerik atau kode publik
func (rc *ReservationController) GetReservation(c *gin.Context) {
	param := c.Param("reservation_id")
	if id, err := strconv.ParseUint(param, 10, 32); err == nil {
		res, err := rc.Scheduler.GetReservation(uint(id))
		if err != nil {
			respondDomainError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Reservation detail", res)
		return
	}

	res, err := rc.Scheduler.Reservations().GetByCode(param)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", res)
}

// ListByTable -> reservasi sebuah meja; ?start=&duration_minutes= untuk
// membatasi ke satu window
func (rc *ReservationController) ListByTable(c *gin.Context) {
	tableID := parseUintParam(c, "table_id")

	var window *scheduler.Window
	if startStr := c.Query("start"); startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		durationMin, err := strconv.Atoi(c.Query("duration_minutes"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		w, err := scheduler.NewWindow(start, time.Duration(durationMin)*time.Minute)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		window = &w
	}

	reservations, err := rc.Scheduler.ListReservationsForTable(tableID, window)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations for table", reservations)
}

// ListUpcoming -> reservasi aktif yang mulai dalam ?within_minutes= ke depan
func (rc *ReservationController) ListUpcoming(c *gin.Context) {
	withinMin, err := strconv.Atoi(c.DefaultQuery("within_minutes", "60"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	upcoming, err := rc.Scheduler.Reservations().ListUpcoming(time.Duration(withinMin) * time.Minute)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Upcoming reservations", upcoming)
}

// ConfirmReservation -> pending menjadi confirmed; tidak mendudukkan tamu
func (rc *ReservationController) ConfirmReservation(c *gin.Context) {
	res, err := rc.Scheduler.Confirm(parseUintParam(c, "reservation_id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	events.BroadcastReservationUpdate(*res)
	utils.RespondJSON(c, http.StatusOK, "Reservation confirmed", res)
}

// SeatReservation -> check-in tamu; meja menjadi occupied
func (rc *ReservationController) SeatReservation(c *gin.Context) {
	res, err := rc.Scheduler.Seat(parseUintParam(c, "reservation_id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	events.BroadcastReservationUpdate(*res)
	utils.RespondJSON(c, http.StatusOK, "Guest seated", res)
}

// CancelReservation -> batalkan reservasi non-terminal
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	// body opsional
	_ = c.ShouldBindJSON(&body)

	res, err := rc.Scheduler.Cancel(parseUintParam(c, "reservation_id"), body.Reason)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	events.BroadcastReservationUpdate(*res)
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", res)
}
