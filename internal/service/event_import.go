package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ExpoSync/internal/config"
	"ExpoSync/internal/interfaces"
	"ExpoSync/internal/model"
	"ExpoSync/internal/normalize"
	"ExpoSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// EventImportService 事件导入器：Airtable → 暂存层 → 生产层
type EventImportService struct {
	source      interfaces.TabularSource
	stagingRepo repository.StagingEventRepository
	eventRepo   repository.EventRepository
	cfg         *config.Config
	logger      *logrus.Logger
}

func NewEventImportService(
	source interfaces.TabularSource,
	stagingRepo repository.StagingEventRepository,
	eventRepo repository.EventRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *EventImportService {
	return &EventImportService{
		source:      source,
		stagingRepo: stagingRepo,
		eventRepo:   eventRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run 执行事件导入：
// 1. 逐页拉取外部事件，过滤非approved状态、缺id_event的记录（逐条记错，不中断）
// 2. 规范化字段后整批upsert进暂存层（失败对本阶段致命）
// 3. 暂存行映射为生产层形态后upsert（失败只记错误，不回滚暂存层——
//    两层允许暂时分叉，下次导入由幂等upsert收敛）
func (s *EventImportService) Run(ctx context.Context) (*model.PhaseResult, error) {
	result := &model.PhaseResult{}

	var staged []*model.StagingEvent
	err := s.source.ForEachPage(ctx, s.cfg.Airtable.Tables.Events, model.AirtableListOptions{}, func(records []*model.AirtableRecord) error {
		for _, r := range records {
			status := strings.TrimSpace(r.Str(fieldStatusEvent))
			if !strings.EqualFold(status, statusApproved) {
				result.Errors = append(result.Errors, model.ImportError{
					Entity:   entityEvents,
					RecordID: r.ID,
					Reason:   fmt.Sprintf("status_event ≠ approved (%s)", status),
				})
				continue
			}
			if r.Str(fieldIDEvent) == "" {
				result.Errors = append(result.Errors, model.ImportError{
					Entity:   entityEvents,
					RecordID: r.ID,
					Reason:   "id_event manquant",
				})
				continue
			}
			staged = append(staged, mapStagingEvent(r))
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("拉取Airtable事件失败: %w", err)
	}

	if err := s.stagingRepo.UpsertBatch(ctx, staged); err != nil {
		return result, fmt.Errorf("暂存层事件upsert失败: %w", err)
	}
	result.Imported = len(staged)

	// 晋升：失败记录为错误但保留暂存层成果
	promoted := make([]*model.Event, 0, len(staged))
	for _, se := range staged {
		promoted = append(promoted, PromoteStagingEvent(se))
	}
	if err := s.eventRepo.UpsertBatch(ctx, promoted); err != nil {
		s.logger.WithError(err).Error("生产层事件晋升失败，暂存层与生产层暂时分叉")
		result.Errors = append(result.Errors, model.ImportError{
			Entity: entityEvents,
			Reason: fmt.Sprintf("晋升生产层失败: %v", err),
		})
	}

	s.logger.WithFields(logrus.Fields{
		"imported": result.Imported,
		"rejected": len(result.Errors),
	}).Info("事件导入完成")
	return result, nil
}

// mapStagingEvent 外部记录 → 暂存层模型（所有规范化都发生在这里）
func mapStagingEvent(r *model.AirtableRecord) *model.StagingEvent {
	dateDebut := normalize.Date(r.Str(fieldDateDebut))
	dateFin := normalize.Date(r.Str(fieldDateFin))
	if dateFin == nil {
		dateFin = dateDebut // 结束日期缺失时回退为开始日期
	}
	ville := strings.TrimSpace(r.Str(fieldVille))
	if ville == "" {
		ville = defaultVille
	}
	pays := strings.TrimSpace(r.Str(fieldPays))
	if pays == "" {
		pays = defaultPays
	}
	return &model.StagingEvent{
		IDEvent:     r.Str(fieldIDEvent),
		NomEvent:    strings.TrimSpace(r.Str(fieldNomEvent)),
		TypeEvent:   string(normalize.EventType(r.Str(fieldTypeEvent))),
		Secteur:     strings.TrimSpace(r.Str(fieldSecteur)),
		DateDebut:   dateDebut,
		DateFin:     dateFin,
		Ville:       ville,
		Pays:        pays,
		URLEvent:    strings.TrimSpace(r.Str(fieldURLEvent)),
		Description: r.Str(fieldDescription),
	}
}

// PromoteStagingEvent 暂存行 → 生产层形态：
// visible=false（人工放行前不可见）、slug置空（触发下游生成）、
// secteur包装为单元素数组
// 事件导入与participation缺口修复共用本映射，保证两条晋升路径不漂移
func PromoteStagingEvent(se *model.StagingEvent) *model.Event {
	pays := se.Pays
	if pays == "" {
		pays = defaultPays
	}
	var secteur datatypes.JSON
	if se.Secteur != "" {
		secteur, _ = json.Marshal([]string{se.Secteur})
	} else {
		secteur = datatypes.JSON("[]")
	}
	return &model.Event{
		EventUUID:   uuid.NewString(),
		IDEvent:     se.IDEvent,
		NomEvent:    se.NomEvent,
		TypeEvent:   se.TypeEvent,
		Secteur:     secteur,
		DateDebut:   se.DateDebut,
		DateFin:     se.DateFin,
		Ville:       se.Ville,
		Pays:        pays,
		URLEvent:    se.URLEvent,
		Description: se.Description,
		Visible:     false,
		Slug:        nil,
	}
}
