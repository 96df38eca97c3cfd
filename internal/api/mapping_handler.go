package api

import (
	"io"
	"net/http"

	"LifeStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxMappingBody 别名表请求体上限
const maxMappingBody = 1 << 20

// MappingHandler 名字别名表的查询与整体替换
type MappingHandler struct {
	aliases *service.AliasService
	logger  *logrus.Logger
}

func NewMappingHandler(aliases *service.AliasService, logger *logrus.Logger) *MappingHandler {
	return &MappingHandler{aliases: aliases, logger: logger}
}

// List GET /api/mappings
func (h *MappingHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.aliases.Mappings())
}

// Replace 请求体为 {"alias": "Canonical"} 或 {"Canonical": ["alias", ...]}
// POST /api/mappings
func (h *MappingHandler) Replace(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxMappingBody))
	if err != nil {
		badRequest(c, h.logger, "ReplaceMappings", err)
		return
	}
	mappings, err := h.aliases.Replace(c.Request.Context(), data)
	if err != nil {
		writeError(c, h.logger, "ReplaceMappings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mappings": mappings})
}
