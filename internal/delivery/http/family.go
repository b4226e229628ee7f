package http

import (
	"net/http"
	"strconv"

	"github.com/Sunshower1260/VisionAid/internal/geo"
	"github.com/gin-gonic/gin"
)

func (h *Handler) sendFamilyLocation(c *gin.Context) {
	var input locationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if !input.UserID.Present || input.Latitude == nil || input.Longitude == nil {
		badRequest(c, "userId, latitude and longitude are required")
		return
	}
	if input.UserID.Invalid {
		badRequest(c, "userId must be a positive integer")
		return
	}

	coord := geo.Coordinate{Latitude: *input.Latitude, Longitude: *input.Longitude}
	if err := h.FamilyService.SendLocation(c.Request.Context(), input.UserID.Value, coord); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "location shared"})
}

func (h *Handler) lastFamilyLocation(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	loc, err := h.FamilyService.LastLocation(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "location": loc})
}

func (h *Handler) listFamily(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	members, err := h.FamilyService.ListFamily(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "family": members})
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid user id")
		return 0, false
	}
	return id, true
}
