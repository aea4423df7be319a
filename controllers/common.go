package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ardisetiawan/resto-seating/scheduler"
	"github.com/ardisetiawan/resto-seating/utils"
)

// respondDomainError memetakan taksonomi error inti ke HTTP.
// Conflict adalah hasil normal di bawah kontensi (409, tanpa log error);
// InvalidTransition adalah sinyal bug caller dan dicatat warning.
func respondDomainError(c *gin.Context, err error) {
	var invalid *scheduler.InvalidTransitionError
	var validation *scheduler.ValidationError

	switch {
	case errors.Is(err, scheduler.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, scheduler.ErrCapacityExceeded):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	case errors.Is(err, scheduler.ErrTableNotFound),
		errors.Is(err, scheduler.ErrReservationNotFound),
		errors.Is(err, scheduler.ErrOrderNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, scheduler.ErrTableBusy):
		utils.RespondError(c, http.StatusServiceUnavailable, err)
	case errors.As(err, &invalid):
		utils.ErrorLogger.Printf("State machine violation: %v", err)
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &validation):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.Printf("Unexpected error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
