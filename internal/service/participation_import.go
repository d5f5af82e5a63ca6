package service

import (
	"context"
	"fmt"

	"ExpoSync/internal/config"
	"ExpoSync/internal/interfaces"
	"ExpoSync/internal/model"
	"ExpoSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ParticipationImportService 参展关系解析器：三个独立键源在最终一致下的对账
// 先修复暂存层→生产层缺口（只修被引用的），再按规范化域名连接参展商，逐条分类后入库
type ParticipationImportService struct {
	source            interfaces.TabularSource
	stagingRepo       repository.StagingEventRepository
	eventRepo         repository.EventRepository
	exposantRepo      repository.ExposantRepository
	participationRepo repository.ParticipationRepository
	cfg               *config.Config
	logger            *logrus.Logger
}

func NewParticipationImportService(
	source interfaces.TabularSource,
	stagingRepo repository.StagingEventRepository,
	eventRepo repository.EventRepository,
	exposantRepo repository.ExposantRepository,
	participationRepo repository.ParticipationRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *ParticipationImportService {
	return &ParticipationImportService{
		source:            source,
		stagingRepo:       stagingRepo,
		eventRepo:         eventRepo,
		exposantRepo:      exposantRepo,
		participationRepo: participationRepo,
		cfg:               cfg,
		logger:            logger,
	}
}

// Run 执行参展关系导入（全阶段中最复杂的一步）：
// 1. 读暂存+生产两层的外部事件ID，"已知事件" = 两层之并集
// 2. 拉取全部外部participation记录，统计被实际引用的事件ID
// 3. 缺口修复：被引用但只在暂存层的事件立即晋升生产层（invisible），
//    只修在需求范围内的缺口；修复失败降级为记错继续（分类只依赖并集，不受影响）
// 4. 按规范化域名建参展商查找表，逐条分类；不可映射的记录不入库，
//    以带原始值+规范化值的类型化错误收集，供操作员排查
// 5. 可映射记录按(id_event, id_exposant)去重后upsert（写前校验复合唯一索引存在）
func (s *ParticipationImportService) Run(ctx context.Context) (*model.PhaseResult, error) {
	result := &model.PhaseResult{}

	// 1. 两层事件ID并集
	prodIDs, err := s.eventRepo.ListIDEvents(ctx)
	if err != nil {
		return result, fmt.Errorf("读取生产层事件ID失败: %w", err)
	}
	stagingIDs, err := s.stagingRepo.ListIDEvents(ctx)
	if err != nil {
		return result, fmt.Errorf("读取暂存层事件ID失败: %w", err)
	}
	inProduction := make(map[string]bool, len(prodIDs))
	for _, id := range prodIDs {
		inProduction[id] = true
	}
	knownEvents := make(map[string]bool, len(prodIDs)+len(stagingIDs))
	for _, id := range prodIDs {
		knownEvents[id] = true
	}
	inStaging := make(map[string]bool, len(stagingIDs))
	for _, id := range stagingIDs {
		inStaging[id] = true
		knownEvents[id] = true
	}

	// 2. 全量拉取participation并统计被引用的事件ID
	records, err := s.source.ListAllRecords(ctx, s.cfg.Airtable.Tables.Participations, model.AirtableListOptions{})
	if err != nil {
		return result, fmt.Errorf("拉取Airtable参展关系失败: %w", err)
	}
	usedEventIDs := make(map[string]bool)
	for _, r := range records {
		if id := r.First(fieldIDEventText); id != "" {
			usedEventIDs[id] = true
		}
	}

	// 3. 缺口修复：有需求且只在暂存层的事件补晋升
	var gapIDs []string
	for id := range usedEventIDs {
		if inStaging[id] && !inProduction[id] {
			gapIDs = append(gapIDs, id)
		}
	}
	if len(gapIDs) > 0 {
		gapRows, err := s.stagingRepo.ListByIDEvents(ctx, gapIDs)
		if err != nil {
			return result, fmt.Errorf("读取待修复暂存事件失败: %w", err)
		}
		toPromote := make([]*model.Event, 0, len(gapRows))
		for _, se := range gapRows {
			toPromote = append(toPromote, PromoteStagingEvent(se))
		}
		if err := s.eventRepo.UpsertBatch(ctx, toPromote); err != nil {
			// 修复失败不阻断解析：并集里已含暂存层，分类结果不变，下次运行重试
			s.logger.WithError(err).Error("暂存→生产缺口修复失败")
			result.Errors = append(result.Errors, model.ImportError{
				Entity: entityParticipations,
				Reason: fmt.Sprintf("synchronisation staging→production échouée: %v", err),
			})
		} else {
			result.Synced = len(toPromote)
		}
	}

	// 4. 逐条解析分类
	exposants, err := s.exposantRepo.ListAll(ctx)
	if err != nil {
		return result, fmt.Errorf("读取参展商失败: %w", err)
	}
	exposantsByDomain := buildExposantsByDomain(exposants)

	var mappable []*model.Participation
	for _, r := range records {
		res := resolveParticipation(r, knownEvents, exposantsByDomain)
		if res.Outcome != model.OutcomeMappable {
			result.Errors = append(result.Errors, model.ImportError{
				Entity:   entityParticipations,
				RecordID: r.ID,
				Reason:   res.Reason(),
			})
			continue
		}
		urlExpo := r.Str(fieldURLExpoEvent)
		if urlExpo == "" {
			result.Errors = append(result.Errors, model.ImportError{
				Entity:   entityParticipations,
				RecordID: r.ID,
				Reason:   "urlexpo_event manquant",
			})
			continue
		}
		mappable = append(mappable, &model.Participation{
			IDEvent:      res.IDEvent,
			IDExposant:   res.IDExposant,
			URLExpoEvent: urlExpo,
		})
	}

	// 5. 批内按(id_event, id_exposant)去重后upsert
	unique := dedupParticipations(mappable)
	if err := s.participationRepo.UpsertBatch(ctx, unique); err != nil {
		return result, fmt.Errorf("参展关系upsert失败: %w", err)
	}
	result.Imported = len(unique)

	s.logger.WithFields(logrus.Fields{
		"synced_events": result.Synced,
		"valid":         len(unique),
		"rejected":      len(result.Errors),
		"imported":      result.Imported,
	}).Info("参展关系导入完成")
	return result, nil
}

// dedupParticipations 同批内(id_event, id_exposant)重复时保留最后一条
// 单条INSERT内对同一行冲突两次会被数据库拒绝，必须先去重
func dedupParticipations(participations []*model.Participation) []*model.Participation {
	if len(participations) == 0 {
		return nil
	}
	type key struct{ idEvent, idExposant string }
	index := make(map[key]int, len(participations))
	var unique []*model.Participation
	for _, p := range participations {
		k := key{p.IDEvent, p.IDExposant}
		if i, ok := index[k]; ok {
			unique[i] = p
			continue
		}
		index[k] = len(unique)
		unique = append(unique, p)
	}
	return unique
}
