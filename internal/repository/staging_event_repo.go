package repository

import (
	"context"

	"ExpoSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StagingEventRepository 暂存层事件仓储
type StagingEventRepository interface {
	// UpsertBatch 按id_event整体覆盖写入（导入管道唯一的写路径，不删除）
	UpsertBatch(ctx context.Context, events []*model.StagingEvent) error
	// ListIDEvents 返回暂存层全部外部事件ID
	ListIDEvents(ctx context.Context) ([]string, error)
	// ListByIDEvents 按外部事件ID集合取暂存行（缺口修复时用）
	ListByIDEvents(ctx context.Context, idEvents []string) ([]*model.StagingEvent, error)
}

type stagingEventRepository struct {
	db *gorm.DB
}

func NewStagingEventRepository(db *gorm.DB) StagingEventRepository {
	return &stagingEventRepository{db: db}
}

func (r *stagingEventRepository) UpsertBatch(ctx context.Context, events []*model.StagingEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id_event"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"nom_event", "type_event", "secteur", "date_debut", "date_fin",
			"ville", "pays", "url_event", "description", "updated_at",
		}),
	}).Create(&events).Error
}

func (r *stagingEventRepository) ListIDEvents(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.StagingEvent{}).Pluck("id_event", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *stagingEventRepository) ListByIDEvents(ctx context.Context, idEvents []string) ([]*model.StagingEvent, error) {
	if len(idEvents) == 0 {
		return nil, nil
	}
	var events []*model.StagingEvent
	if err := r.db.WithContext(ctx).Where("id_event IN ?", idEvents).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
