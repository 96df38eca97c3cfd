package api

import (
	"net/http"

	"LifeStats/internal/export"
	"LifeStats/internal/repository"
	"LifeStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ExportHandler CSV 下载
type ExportHandler struct {
	events *service.EventService
	logger *logrus.Logger
}

func NewExportHandler(events *service.EventService, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{events: events, logger: logger}
}

func csvHeaders(c *gin.Context, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
}

// Bathroom 数据页导出默认包含全部类别
// GET /api/export/bathroom.csv?include_cum=true
func (h *ExportHandler) Bathroom(c *gin.Context) {
	filter := repository.BathroomFilter{IncludeSensitive: boolQuery(c, "include_cum", true)}
	list, err := h.events.ListBathroomEvents(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, "ExportBathroom", err)
		return
	}
	csvHeaders(c, "bathroom_events.csv")
	if err := export.WriteBathroomCSV(c.Writer, list); err != nil {
		h.logger.WithError(err).Error("ExportBathroom write failed")
	}
}

// Dental GET /api/export/dental.csv
func (h *ExportHandler) Dental(c *gin.Context) {
	list, err := h.events.ListDentalEvents(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "ExportDental", err)
		return
	}
	csvHeaders(c, "dental_events.csv")
	if err := export.WriteDentalCSV(c.Writer, list); err != nil {
		h.logger.WithError(err).Error("ExportDental write failed")
	}
}
