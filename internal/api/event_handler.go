package api

import (
	"errors"
	"net/http"
	"strconv"

	"ExpoSync/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EventHandler 提供给应用其余部分的只读查询接口（消费生产层）
type EventHandler struct {
	eventRepo         repository.EventRepository
	participationRepo repository.ParticipationRepository
	logger            *logrus.Logger
}

func NewEventHandler(db *gorm.DB, logger *logrus.Logger) *EventHandler {
	schemaRepo := repository.NewSchemaRepository(db)
	return &EventHandler{
		eventRepo:         repository.NewEventRepository(db),
		participationRepo: repository.NewParticipationRepository(db, schemaRepo),
		logger:            logger,
	}
}

// ListEvents 生产层事件列表
// GET /api/events?type=salon&ville=Paris&visible=true&page=1&page_size=20
func (h *EventHandler) ListEvents(c *gin.Context) {
	filter := repository.EventFilter{
		TypeEvent: c.Query("type"),
		Ville:     c.Query("ville"),
	}
	if v := c.Query("visible"); v != "" {
		visible := v == "true"
		filter.Visible = &visible
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	events, total, err := h.eventRepo.ListEvents(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListEvents failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"page":   page,
		"events": events,
	})
}

// GetEventDetail 单事件详情 + 其参展关系
// GET /api/events/:id_event
func (h *EventHandler) GetEventDetail(c *gin.Context) {
	idEvent := c.Param("id_event")
	if idEvent == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_event is required"})
		return
	}

	event, err := h.eventRepo.GetByIDEvent(c.Request.Context(), idEvent)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		h.logger.WithError(err).Error("GetEventDetail failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	participations, err := h.participationRepo.ListByIDEvent(c.Request.Context(), idEvent)
	if err != nil {
		h.logger.WithError(err).Error("ListByIDEvent failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":          event,
		"participations": participations,
	})
}
