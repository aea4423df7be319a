package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ardisetiawan/resto-seating/events"
	"github.com/ardisetiawan/resto-seating/models"
	"github.com/ardisetiawan/resto-seating/scheduler"
	"github.com/ardisetiawan/resto-seating/utils"
)

type TableController struct {
	Scheduler *scheduler.AvailabilityScheduler
}

func NewTableController(s *scheduler.AvailabilityScheduler) *TableController {
	return &TableController{Scheduler: s}
}

// CreateTable -> registrasi meja baru (administratif); status awal free
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity" binding:"required,min=1"`
		Location    string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber:     req.TableNumber,
		Capacity:        req.Capacity,
		Location:        req.Location,
		Status:          models.TableStatusFree,
		StatusChangedAt: time.Now(),
	}
	if err := utils.GetDB().Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastTableUpdate(table)
	utils.InfoLogger.Printf("New table registered: %s (capacity=%d, location=%s)",
		table.TableNumber, table.Capacity, table.Location)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> seluruh meja aktif; ?status= untuk filter
func (tc *TableController) GetAllTables(c *gin.Context) {
	status := c.Query("status")

	var tables []models.Table
	var err error
	if status != "" {
		tables, err = tc.Scheduler.Tables().ListByStatus(status)
	} else {
		tables, err = tc.Scheduler.Tables().List()
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := parseUintParam(c, "table_id")
	table, err := tc.Scheduler.GetTable(tableID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// FindAvailable -> cari meja kosong untuk window + rombongan tertentu.
// Query: start (RFC3339), duration_minutes, party_size, location (ops),
// best_fit=true untuk langsung mendapat satu meja terbaik.
func (tc *TableController) FindAvailable(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	durationMin, err := strconv.Atoi(c.Query("duration_minutes"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	partySize, err := strconv.Atoi(c.Query("party_size"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	window, err := scheduler.NewWindow(start, time.Duration(durationMin)*time.Minute)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	tables, err := tc.Scheduler.FindAvailableTables(window, partySize, c.Query("location"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if c.Query("best_fit") == "true" {
		best := tc.Scheduler.BestFit(tables, partySize)
		if best == nil {
			utils.RespondJSON(c, http.StatusOK, "No table fits the party", nil)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Best fitting table", best)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Available tables", tables)
}

// ReleaseTable -> occupied kembali free (selesai makan / reclaim manual)
func (tc *TableController) ReleaseTable(c *gin.Context) {
	tableID := parseUintParam(c, "table_id")
	table, err := tc.Scheduler.Release(tableID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	events.BroadcastTableUpdate(*table)
	utils.RespondJSON(c, http.StatusOK, "Table released", table)
}

// SetMaintenance -> tandai meja maintenance (hanya dari free)
func (tc *TableController) SetMaintenance(c *gin.Context) {
	tableID := parseUintParam(c, "table_id")
	var body struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Scheduler.SetMaintenance(tableID, body.Note)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	events.BroadcastTableUpdate(*table)
	utils.RespondJSON(c, http.StatusOK, "Table set to maintenance", table)
}

// ClearMaintenance -> meja maintenance kembali free
func (tc *TableController) ClearMaintenance(c *gin.Context) {
	tableID := parseUintParam(c, "table_id")
	table, err := tc.Scheduler.ClearMaintenance(tableID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	events.BroadcastTableUpdate(*table)
	utils.RespondJSON(c, http.StatusOK, "Maintenance cleared", table)
}

// RegisterCleaning -> catat pembersihan meja; status okupansi tidak berubah
func (tc *TableController) RegisterCleaning(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "cleaner" && roleInterface != "staff" && roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	tableID := parseUintParam(c, "table_id")
	userIDInterface, _ := c.Get("user_id")
	cleanerID, _ := userIDInterface.(uint)

	entry, err := tc.Scheduler.Tables().RegisterCleaning(tableID, cleanerID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning registered", entry)
}

// DisableTable -> soft-disable; meja dengan riwayat reservasi tidak dihapus
func (tc *TableController) DisableTable(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	if roleInterface != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	tableID := parseUintParam(c, "table_id")
	var body struct {
		Disabled *bool `json:"disabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Scheduler.Tables().SetDisabled(tableID, *body.Disabled)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func parseUintParam(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(v)
}
