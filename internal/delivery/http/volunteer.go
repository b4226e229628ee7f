package http

import (
	"net/http"
	"strconv"

	"github.com/Sunshower1260/VisionAid/internal/geo"
	"github.com/gin-gonic/gin"
)

func (h *Handler) updateLocation(c *gin.Context) {
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
	if err := h.VolunteerService.UpdateLocation(c.Request.Context(), input.UserID.Value, coord); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "location updated"})
}

func (h *Handler) requestVolunteer(c *gin.Context) {
	var input requestVolunteerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if input.Latitude == nil || input.Longitude == nil {
		badRequest(c, "latitude and longitude are required")
		return
	}

	requester := geo.Coordinate{Latitude: *input.Latitude, Longitude: *input.Longitude}
	match, err := h.VolunteerService.RequestVolunteer(c.Request.Context(), requester)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"nearestVolunteer": nearestVolunteer{
			ID:         match.VolunteerID,
			Email:      match.Email,
			Latitude:   match.Location.Latitude,
			Longitude:  match.Location.Longitude,
			DistanceKm: match.DistanceKm,
		},
	})
}

func (h *Handler) listHelpRequests(c *gin.Context) {
	volunteerID, err := strconv.ParseInt(c.Param("volunteerId"), 10, 64)
	if err != nil {
		badRequest(c, "invalid volunteer id")
		return
	}

	requests, err := h.HelpRequestService.ListPending(c.Request.Context(), volunteerID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "requests": requests})
}

func (h *Handler) acceptHelpRequest(c *gin.Context) {
	var input acceptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if !input.RequestID.Present || input.RequestID.Invalid {
		badRequest(c, "requestId is required")
		return
	}

	if err := h.HelpRequestService.Accept(c.Request.Context(), input.RequestID.Value); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "help request accepted"})
}

func (h *Handler) updateRole(c *gin.Context) {
	var input updateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	if !input.UserID.Present || input.UserID.Invalid || input.Role == "" {
		badRequest(c, "userId and role are required")
		return
	}

	if err := h.VolunteerService.UpdateRole(c.Request.Context(), input.UserID.Value, input.Role); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "role updated"})
}
