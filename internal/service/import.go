package service

import (
	"context"

	"ExpoSync/internal/config"
	"ExpoSync/internal/interfaces"
	"ExpoSync/internal/model"
	"ExpoSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImportService 导入编排器：按 事件→参展商→参展关系 的顺序跑三个导入器
// 一次HTTP触发同步跑完（无后台调度、无跨运行锁）；某阶段致命失败不阻断后续阶段
type ImportService struct {
	events         *EventImportService
	exposants      *ExposantImportService
	participations *ParticipationImportService
	logger         *logrus.Logger
}

func NewImportService(db *gorm.DB, source interfaces.TabularSource, cfg *config.Config, logger *logrus.Logger) *ImportService {
	stagingRepo := repository.NewStagingEventRepository(db)
	eventRepo := repository.NewEventRepository(db)
	exposantRepo := repository.NewExposantRepository(db)
	schemaRepo := repository.NewSchemaRepository(db)
	participationRepo := repository.NewParticipationRepository(db, schemaRepo)

	return &ImportService{
		events:         NewEventImportService(source, stagingRepo, eventRepo, cfg, logger),
		exposants:      NewExposantImportService(source, exposantRepo, cfg, logger),
		participations: NewParticipationImportService(source, stagingRepo, eventRepo, exposantRepo, participationRepo, cfg, logger),
		logger:         logger,
	}
}

// Run 跑完整导入并聚合各阶段计数与错误
// 记录级错误（校验拒绝/解析失败）不影响success；阶段级致命错误使success=false
func (s *ImportService) Run(ctx context.Context) *model.ImportSummary {
	summary := &model.ImportSummary{Success: true, Errors: []model.ImportError{}}

	eventResult, err := s.events.Run(ctx)
	s.collect(summary, entityEvents, eventResult, err)
	summary.EventsImported = eventResult.Imported

	exposantResult, err := s.exposants.Run(ctx)
	s.collect(summary, entityExposants, exposantResult, err)
	summary.ExposantsImported = exposantResult.Imported

	participationResult, err := s.participations.Run(ctx)
	s.collect(summary, entityParticipations, participationResult, err)
	summary.ParticipationsImported = participationResult.Imported
	summary.SyncedEvents = participationResult.Synced

	s.logger.WithFields(logrus.Fields{
		"success":                 summary.Success,
		"events_imported":         summary.EventsImported,
		"exposants_imported":      summary.ExposantsImported,
		"participations_imported": summary.ParticipationsImported,
		"synced_events":           summary.SyncedEvents,
		"errors":                  len(summary.Errors),
	}).Info("导入运行结束")
	return summary
}

// collect 归并单阶段结果：记录级错误追加，阶段级致命错误降级为聚合错误项
func (s *ImportService) collect(summary *model.ImportSummary, entity string, result *model.PhaseResult, err error) {
	if result != nil {
		summary.Errors = append(summary.Errors, result.Errors...)
	}
	if err != nil {
		s.logger.WithError(err).Errorf("导入阶段[%s]致命失败", entity)
		summary.Success = false
		summary.Errors = append(summary.Errors, model.ImportError{Entity: entity, Reason: err.Error()})
	}
}
