package service

import (
	"context"
	"fmt"
	"strings"

	"ExpoSync/internal/config"
	"ExpoSync/internal/interfaces"
	"ExpoSync/internal/model"
	"ExpoSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ExposantImportService 参展商导入器
type ExposantImportService struct {
	source       interfaces.TabularSource
	exposantRepo repository.ExposantRepository
	cfg          *config.Config
	logger       *logrus.Logger
}

func NewExposantImportService(
	source interfaces.TabularSource,
	exposantRepo repository.ExposantRepository,
	cfg *config.Config,
	logger *logrus.Logger,
) *ExposantImportService {
	return &ExposantImportService{
		source:       source,
		exposantRepo: exposantRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// isTestExposant 测试/占位数据防护：名称TEST前缀或网址含test-的记录不进生产数据
func isTestExposant(nom, website string) bool {
	return strings.HasPrefix(nom, "TEST") || strings.Contains(strings.ToLower(website), "test-")
}

// Run 执行参展商导入：测试数据静默丢弃，缺必填字段逐条记错，
// 幸存记录整批upsert（失败对本阶段致命）；零条导入是合法结果
func (s *ExposantImportService) Run(ctx context.Context) (*model.PhaseResult, error) {
	result := &model.PhaseResult{}

	var exposants []*model.Exposant
	skippedTest := 0
	err := s.source.ForEachPage(ctx, s.cfg.Airtable.Tables.Exposants, model.AirtableListOptions{}, func(records []*model.AirtableRecord) error {
		for _, r := range records {
			nom := strings.TrimSpace(r.Str(fieldNomExposant))
			website := strings.TrimSpace(r.Str(fieldWebsiteExposant))
			if isTestExposant(nom, website) {
				skippedTest++
				continue
			}
			if r.Str(fieldIDExposant) == "" {
				result.Errors = append(result.Errors, model.ImportError{
					Entity:   entityExposants,
					RecordID: r.ID,
					Reason:   "id_exposant manquant",
				})
				continue
			}
			if nom == "" {
				result.Errors = append(result.Errors, model.ImportError{
					Entity:   entityExposants,
					RecordID: r.ID,
					Reason:   "nom_exposant manquant",
				})
				continue
			}
			exposants = append(exposants, &model.Exposant{
				IDExposant:      r.Str(fieldIDExposant),
				NomExposant:     nom,
				WebsiteExposant: website,
				Description:     r.Str(fieldDescriptionExposant),
			})
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("拉取Airtable参展商失败: %w", err)
	}

	if err := s.exposantRepo.UpsertBatch(ctx, exposants); err != nil {
		return result, fmt.Errorf("参展商upsert失败: %w", err)
	}
	result.Imported = len(exposants)

	s.logger.WithFields(logrus.Fields{
		"imported":     result.Imported,
		"rejected":     len(result.Errors),
		"skipped_test": skippedTest,
	}).Info("参展商导入完成")
	return result, nil
}
