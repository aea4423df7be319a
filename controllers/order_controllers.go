package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ardisetiawan/resto-seating/events"
	"github.com/ardisetiawan/resto-seating/models"
	"github.com/ardisetiawan/resto-seating/scheduler"
	"github.com/ardisetiawan/resto-seating/utils"
)

// OrderController hanya memegang hook buka/tutup order dari modul order;
// item, harga, dan pembayaran bukan urusan layanan ini.
type OrderController struct {
	Scheduler *scheduler.AvailabilityScheduler
}

func NewOrderController(s *scheduler.AvailabilityScheduler) *OrderController {
	return &OrderController{Scheduler: s}
}

// OpenOrder -> order dibuka pada sebuah meja. Dengan reservation_id berarti
// check-in reservasi; tanpa berarti walk-in.
func (oc *OrderController) OpenOrder(c *gin.Context) {
	var req struct {
		TableID       uint  `json:"table_id" binding:"required"`
		ReservationID *uint `json:"reservation_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Scheduler.OrderOpened(req.TableID, req.ReservationID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if table, err := oc.Scheduler.GetTable(order.TableID); err == nil {
		events.BroadcastTableUpdate(*table)
	}
	utils.RespondJSON(c, http.StatusCreated, "Order opened", order)
}

// CloseOrder -> order selesai; meja dilepas
func (oc *OrderController) CloseOrder(c *gin.Context) {
	order, err := oc.Scheduler.OrderClosed(parseUintParam(c, "order_id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if table, err := oc.Scheduler.GetTable(order.TableID); err == nil {
		events.BroadcastTableUpdate(*table)
	}
	utils.RespondJSON(c, http.StatusOK, "Order closed", order)
}

// GetOrderByID -> detail keterkaitan order-meja
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := utils.GetDB().Preload("Table").First(&order, parseUintParam(c, "order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}
