package service

import (
	"context"
	"fmt"
	"sort"

	"ExpoSync/internal/config"
	"ExpoSync/internal/interfaces"
	"ExpoSync/internal/model"
	"ExpoSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultDiagnosticSample 诊断默认采样条数
const DefaultDiagnosticSample = 50

// topUnresolvedDomains 未解析域名榜单长度
const topUnresolvedDomains = 10

// UnresolvedDomain 未命中参展商的域名及出现次数
type UnresolvedDomain struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

// DiagnosticsReport 解析诊断报告：约束实查 + 采样解析明细 + 聚合计数
type DiagnosticsReport struct {
	Constraints          repository.SchemaConstraints      `json:"constraints"`
	SampleSize           int                               `json:"sample_size"`
	Outcomes             map[model.ResolutionOutcome]int   `json:"outcomes"`
	Records              []ParticipationResolution         `json:"records"`
	TopUnresolvedDomains []UnresolvedDomain                `json:"top_unresolved_domains"`
}

// DiagnosticsService 参展关系解析器的只读孪生：跑同一套分类逻辑但不写任何表，
// 供操作员在导入后解释为什么生产数据不完整，而不冒进一步写坏数据的风险
type DiagnosticsService struct {
	source       interfaces.TabularSource
	stagingRepo  repository.StagingEventRepository
	eventRepo    repository.EventRepository
	exposantRepo repository.ExposantRepository
	schemaRepo   repository.SchemaRepository
	cfg          *config.Config
	logger       *logrus.Logger
}

func NewDiagnosticsService(db *gorm.DB, source interfaces.TabularSource, cfg *config.Config, logger *logrus.Logger) *DiagnosticsService {
	return &DiagnosticsService{
		source:       source,
		stagingRepo:  repository.NewStagingEventRepository(db),
		eventRepo:    repository.NewEventRepository(db),
		exposantRepo: repository.NewExposantRepository(db),
		schemaRepo:   repository.NewSchemaRepository(db),
		cfg:          cfg,
		logger:       logger,
	}
}

// Run 对最多sampleSize条participation记录做解析演练（不修复缺口、不入库）
func (s *DiagnosticsService) Run(ctx context.Context, sampleSize int) (*DiagnosticsReport, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultDiagnosticSample
	}

	prodIDs, err := s.eventRepo.ListIDEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取生产层事件ID失败: %w", err)
	}
	stagingIDs, err := s.stagingRepo.ListIDEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取暂存层事件ID失败: %w", err)
	}
	knownEvents := make(map[string]bool, len(prodIDs)+len(stagingIDs))
	for _, id := range prodIDs {
		knownEvents[id] = true
	}
	for _, id := range stagingIDs {
		knownEvents[id] = true
	}

	exposants, err := s.exposantRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取参展商失败: %w", err)
	}
	exposantsByDomain := buildExposantsByDomain(exposants)

	page, err := s.source.ListRecords(ctx, s.cfg.Airtable.Tables.Participations, model.AirtableListOptions{
		MaxRecords: sampleSize,
	})
	if err != nil {
		return nil, fmt.Errorf("拉取participation采样失败: %w", err)
	}

	report := &DiagnosticsReport{
		Constraints: s.schemaRepo.CheckConstraints(ctx),
		SampleSize:  len(page.Records),
		Outcomes: map[model.ResolutionOutcome]int{
			model.OutcomeMappable:          0,
			model.OutcomeEventNotFound:     0,
			model.OutcomeExhibitorNotFound: 0,
			model.OutcomeBothNotFound:      0,
		},
	}
	domainCounts := make(map[string]int)
	for _, r := range page.Records {
		res := resolveParticipation(r, knownEvents, exposantsByDomain)
		report.Outcomes[res.Outcome]++
		report.Records = append(report.Records, res)
		if !res.ExposantFound && res.Domain != "" {
			domainCounts[res.Domain]++
		}
	}

	for domain, count := range domainCounts {
		report.TopUnresolvedDomains = append(report.TopUnresolvedDomains, UnresolvedDomain{
			Domain: domain,
			Count:  count,
			Reason: "exposant introuvable",
		})
	}
	sort.Slice(report.TopUnresolvedDomains, func(i, j int) bool {
		a, b := report.TopUnresolvedDomains[i], report.TopUnresolvedDomains[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Domain < b.Domain
	})
	if len(report.TopUnresolvedDomains) > topUnresolvedDomains {
		report.TopUnresolvedDomains = report.TopUnresolvedDomains[:topUnresolvedDomains]
	}

	s.logger.WithFields(logrus.Fields{
		"sample":   report.SampleSize,
		"mappable": report.Outcomes[model.OutcomeMappable],
	}).Info("解析诊断完成")
	return report, nil
}
