package api

import (
	"net/http"

	"ExpoSync/internal/config"
	"ExpoSync/internal/interfaces"
	"ExpoSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImportHandler 导入触发入口
type ImportHandler struct {
	importService *service.ImportService
	cfg           *config.Config
	logger        *logrus.Logger
}

func NewImportHandler(db *gorm.DB, source interfaces.TabularSource, logger *logrus.Logger, cfg *config.Config) *ImportHandler {
	return &ImportHandler{
		importService: service.NewImportService(db, source, cfg, logger),
		cfg:           cfg,
		logger:        logger,
	}
}

// RunImport 触发一次完整导入（无请求体，配置来自环境）
// @Summary 同步Airtable数据到暂存/生产层
// @Success 200 {object} model.ImportSummary
// @Failure 400 {object} map[string]any
// @Failure 500 {object} model.ImportSummary
// @Router /sync/airtable [post]
func (h *ImportHandler) RunImport(c *gin.Context) {
	// 配置校验先于任何工作；缺失项一次性全部列出
	if missing := h.cfg.Airtable.MissingCredentials(); len(missing) > 0 {
		h.logger.Errorf("Airtable凭证缺失: %v", missing)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "missing required environment variables",
			"details": missing,
		})
		return
	}

	summary := h.importService.Run(c.Request.Context())
	if !summary.Success {
		c.JSON(http.StatusInternalServerError, summary)
		return
	}
	c.JSON(http.StatusOK, summary)
}
