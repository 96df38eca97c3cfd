package api

import (
	"io"
	"net/http"
	"strings"

	"LifeStats/internal/model"
	"LifeStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ImportHandler 批量导入与导入记录
type ImportHandler struct {
	imports *service.ImportService
	logger  *logrus.Logger
}

func NewImportHandler(imports *service.ImportService, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{imports: imports, logger: logger}
}

func importedResponse(batch *model.ImportBatch) gin.H {
	return gin.H{"success": true, "imported": batch.Count, "batch_uuid": batch.BatchUUID}
}

// ImportBathroom 请求体为事件数组，任一行非法则整批拒绝
// POST /api/import/bathroom
func (h *ImportHandler) ImportBathroom(c *gin.Context) {
	var rows []service.BathroomInput
	if err := c.ShouldBindJSON(&rows); err != nil {
		badRequest(c, h.logger, "ImportBathroom", err)
		return
	}
	batch, err := h.imports.ImportBathroomEvents(c.Request.Context(), rows, model.ImportSourceAPI)
	if err != nil {
		writeError(c, h.logger, "ImportBathroom", err)
		return
	}
	c.JSON(http.StatusOK, importedResponse(batch))
}

// ImportDental POST /api/import/dental
func (h *ImportHandler) ImportDental(c *gin.Context) {
	var rows []service.DentalInput
	if err := c.ShouldBindJSON(&rows); err != nil {
		badRequest(c, h.logger, "ImportDental", err)
		return
	}
	batch, err := h.imports.ImportDentalEvents(c.Request.Context(), rows, model.ImportSourceAPI)
	if err != nil {
		writeError(c, h.logger, "ImportDental", err)
		return
	}
	c.JSON(http.StatusOK, importedResponse(batch))
}

// ImportForms Google Forms CSV：multipart 字段 file，或直接以 text/csv 作为请求体
// POST /api/import/forms
func (h *ImportHandler) ImportForms(c *gin.Context) {
	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			badRequest(c, h.logger, "ImportForms", err)
			return
		}
		f, err := fh.Open()
		if err != nil {
			badRequest(c, h.logger, "ImportForms", err)
			return
		}
		defer f.Close()
		body = f
	}

	result, err := h.imports.ImportFormsCSV(c.Request.Context(), body)
	if err != nil {
		writeError(c, h.logger, "ImportForms", err)
		return
	}
	resp := gin.H{
		"success":  true,
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"invalid":  result.Invalid,
	}
	if result.Batch != nil {
		resp["batch_uuid"] = result.Batch.BatchUUID
	}
	c.JSON(http.StatusOK, resp)
}

// ListBatches GET /api/imports?limit=20
func (h *ImportHandler) ListBatches(c *gin.Context) {
	list, err := h.imports.ListBatches(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		writeError(c, h.logger, "ListImportBatches", err)
		return
	}
	c.JSON(http.StatusOK, list)
}
