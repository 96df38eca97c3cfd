package api

import (
	"net/http"

	"LifeStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DentalHandler 刷牙记录；/api/toothbrush 为旧版页面使用的同义路径
type DentalHandler struct {
	events *service.EventService
	logger *logrus.Logger
}

func NewDentalHandler(events *service.EventService, logger *logrus.Logger) *DentalHandler {
	return &DentalHandler{events: events, logger: logger}
}

// Create POST /api/dental, POST /api/toothbrush
func (h *DentalHandler) Create(c *gin.Context) {
	var in service.DentalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "CreateDentalEvent", err)
		return
	}
	ev, err := h.events.CreateDentalEvent(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, "CreateDentalEvent", err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// Update PUT /api/dental/:id
func (h *DentalHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, h.logger, "UpdateDentalEvent", err)
		return
	}
	var in service.DentalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "UpdateDentalEvent", err)
		return
	}
	ev, err := h.events.UpdateDentalEvent(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, h.logger, "UpdateDentalEvent", err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// Delete DELETE /api/dental/:id
func (h *DentalHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err == nil {
		err = h.events.DeleteDentalEvent(c.Request.Context(), id)
	}
	if err != nil {
		writeError(c, h.logger, "DeleteDentalEvent", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Get GET /api/dental/:id
func (h *DentalHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, h.logger, "GetDentalEvent", err)
		return
	}
	ev, err := h.events.GetDentalEvent(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "GetDentalEvent", err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// List GET /api/dental, GET /api/toothbrush
func (h *DentalHandler) List(c *gin.Context) {
	list, err := h.events.ListDentalEvents(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "ListDentalEvents", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
