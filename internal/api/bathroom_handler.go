package api

import (
	"net/http"

	"LifeStats/internal/repository"
	"LifeStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BathroomHandler bathroom 事件的增删改查，以及旧版 /api/event 与常用人名
type BathroomHandler struct {
	events *service.EventService
	logger *logrus.Logger
}

// NewBathroomHandler 创建 BathroomHandler
func NewBathroomHandler(events *service.EventService, logger *logrus.Logger) *BathroomHandler {
	return &BathroomHandler{events: events, logger: logger}
}

// Create 新建事件
// POST /api/bathroom
func (h *BathroomHandler) Create(c *gin.Context) {
	var in service.BathroomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "CreateBathroomEvent", err)
		return
	}
	ev, err := h.events.CreateBathroomEvent(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, "CreateBathroomEvent", err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// CreateLegacy 旧版前端提交 {type, timestamp, location, who}
// POST /api/event
func (h *BathroomHandler) CreateLegacy(c *gin.Context) {
	var in service.LegacyEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "CreateLegacyEvent", err)
		return
	}
	ev, err := h.events.CreateBathroomEvent(c.Request.Context(), in.ToBathroomInput())
	if err != nil {
		writeError(c, h.logger, "CreateLegacyEvent", err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// Update 整体替换
// PUT /api/bathroom/:id
func (h *BathroomHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, h.logger, "UpdateBathroomEvent", err)
		return
	}
	var in service.BathroomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "UpdateBathroomEvent", err)
		return
	}
	ev, err := h.events.UpdateBathroomEvent(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, h.logger, "UpdateBathroomEvent", err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// Delete DELETE /api/bathroom/:id
func (h *BathroomHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err == nil {
		err = h.events.DeleteBathroomEvent(c.Request.Context(), id)
	}
	if err != nil {
		writeError(c, h.logger, "DeleteBathroomEvent", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Get GET /api/bathroom/:id
func (h *BathroomHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, h.logger, "GetBathroomEvent", err)
		return
	}
	ev, err := h.events.GetBathroomEvent(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "GetBathroomEvent", err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// List 事件列表，默认隐藏 cum
// GET /api/bathroom?include_cum=true, GET /api/events?include_cum=true
func (h *BathroomHandler) List(c *gin.Context) {
	filter := repository.BathroomFilter{IncludeSensitive: boolQuery(c, "include_cum", false)}
	list, err := h.events.ListBathroomEvents(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, "ListBathroomEvents", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// TopNames GET /api/top-names?limit=3
func (h *BathroomHandler) TopNames(c *gin.Context) {
	rows, err := h.events.TopNames(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		writeError(c, h.logger, "TopNames", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
