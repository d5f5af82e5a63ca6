package api

import (
	"net/http"
	"strconv"

	"ExpoSync/internal/config"
	"ExpoSync/internal/interfaces"
	"ExpoSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DiagnosticsHandler 解析诊断入口（只读，不做任何写操作）
type DiagnosticsHandler struct {
	diagnostics *service.DiagnosticsService
	logger      *logrus.Logger
}

func NewDiagnosticsHandler(db *gorm.DB, source interfaces.TabularSource, logger *logrus.Logger, cfg *config.Config) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		diagnostics: service.NewDiagnosticsService(db, source, cfg, logger),
		logger:      logger,
	}
}

// ParticipationDiagnostics 对participation解析做只读演练
// GET /api/diagnostics/participations?sample=50
func (h *DiagnosticsHandler) ParticipationDiagnostics(c *gin.Context) {
	sample, _ := strconv.Atoi(c.DefaultQuery("sample", strconv.Itoa(service.DefaultDiagnosticSample)))
	if sample > 500 {
		sample = 500
	}

	report, err := h.diagnostics.Run(c.Request.Context(), sample)
	if err != nil {
		h.logger.WithError(err).Error("解析诊断失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
