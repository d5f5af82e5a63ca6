package repository

import (
	"context"

	"ExpoSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExposantRepository 参展商仓储
type ExposantRepository interface {
	// UpsertBatch 按id_exposant upsert
	UpsertBatch(ctx context.Context, exposants []*model.Exposant) error
	// ListAll 全量读取（解析阶段按规范化域名建查找表）
	ListAll(ctx context.Context) ([]*model.Exposant, error)
}

type exposantRepository struct {
	db *gorm.DB
}

func NewExposantRepository(db *gorm.DB) ExposantRepository {
	return &exposantRepository{db: db}
}

func (r *exposantRepository) UpsertBatch(ctx context.Context, exposants []*model.Exposant) error {
	if len(exposants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id_exposant"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"nom_exposant", "website_exposant", "description", "updated_at",
		}),
	}).Create(&exposants).Error
}

func (r *exposantRepository) ListAll(ctx context.Context) ([]*model.Exposant, error) {
	var exposants []*model.Exposant
	if err := r.db.WithContext(ctx).Find(&exposants).Error; err != nil {
		return nil, err
	}
	return exposants, nil
}
